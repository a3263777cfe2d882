/*
Copyright 2025 Trove Market Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/gin-gonic/gin"

	model2 "github.com/trovemarket/settle/api/model"
	"github.com/trovemarket/settle"
	"github.com/trovemarket/settle/internal/apierror"
)

// RecordCommission handles the order-completed event for one order line.
// It binds the incoming JSON request to a RecordCommission object, validates it,
// and records the pending commission. If any errors occur during validation or
// recording, it responds with an appropriate error message.
//
// Responses:
// - 400 Bad Request: If there's an error in binding JSON or validating the payload.
// - 201 Created: If the commission is successfully recorded.
func (a Api) RecordCommission(c *gin.Context) {
	var newCommission model2.RecordCommission
	if err := c.ShouldBindJSON(&newCommission); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := newCommission.ValidateRecordCommission()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.settle.RecordOrderCommission(c.Request.Context(), settle.OrderCompletedEvent{
		OrderID:        newCommission.OrderID,
		ProductID:      newCommission.ProductID,
		SellerID:       newCommission.SellerID,
		SaleAmount:     newCommission.SaleAmount,
		CommissionRate: newCommission.CommissionRate,
		MetaData:       newCommission.MetaData,
	})
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetCommission retrieves a single commission by ID.
func (a Api) GetCommission(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.settle.GetCommission(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPendingCommissions lists a seller's pending commissions that have
// cleared the holding period.
func (a Api) GetPendingCommissions(c *gin.Context) {
	sellerID, passed := c.Params.Get("seller_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id is required. pass seller_id in the route /:seller_id"})
		return
	}

	resp, err := a.settle.GetPendingCommissions(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CalculatePayoutAmount previews what a payout for the seller would contain,
// without creating one.
func (a Api) CalculatePayoutAmount(c *gin.Context) {
	sellerID, passed := c.Params.Get("seller_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id is required. pass seller_id in the route /:seller_id"})
		return
	}

	resp, err := a.settle.CalculatePayoutAmount(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCommissionAnalytics returns per-status totals and a monthly breakdown
// for a seller.
func (a Api) GetCommissionAnalytics(c *gin.Context) {
	sellerID, passed := c.Params.Get("seller_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id is required. pass seller_id in the route /:seller_id"})
		return
	}

	resp, err := a.settle.GetCommissionAnalytics(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
