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
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	model2 "github.com/trovemarket/settle/api/model"
	"github.com/trovemarket/settle/internal/apierror"
	"github.com/trovemarket/settle/model"
)

// CreatePayout batches a seller's eligible pending commissions into a new
// payout.
//
// Responses:
// - 400 Bad Request: If the payload is invalid or the seller has no eligible commissions.
// - 409 Conflict: If another payout for the seller is already in progress.
// - 201 Created: If the payout is successfully created.
func (a Api) CreatePayout(c *gin.Context) {
	var newPayout model2.CreatePayout
	if err := c.ShouldBindJSON(&newPayout); err != nil {
		logrus.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := newPayout.ValidateCreatePayout()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.settle.CreatePayout(c.Request.Context(), newPayout.SellerID, model.PaymentMethod(newPayout.PaymentMethod), newPayout.ParsedScheduledDate())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPayout retrieves a payout by ID.
func (a Api) GetPayout(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.settle.GetPayout(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPayoutCommissions lists the commissions attached to a payout.
func (a Api) GetPayoutCommissions(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.settle.GetPayoutCommissions(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSellerPayouts lists a seller's payouts, newest first. Supports limit
// and offset query parameters.
func (a Api) GetSellerPayouts(c *gin.Context) {
	sellerID, passed := c.Params.Get("seller_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seller_id is required. pass seller_id in the route /:seller_id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := a.settle.GetSellerPayouts(c.Request.Context(), sellerID, limit, offset)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CompletePayout marks a payout completed after the payment processor
// confirms it. Completing twice is safe; the second call returns the stored
// payout unchanged.
func (a Api) CompletePayout(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var body model2.CompletePayout
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := body.ValidateCompletePayout(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.settle.CompletePayout(c.Request.Context(), id, body.PaymentReference)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// FailPayout marks a payout failed and releases its commissions back to
// pending.
func (a Api) FailPayout(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	var body model2.FailPayout
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := body.ValidateFailPayout(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.settle.FailPayout(c.Request.Context(), id, body.FailureReason)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RunPayouts queues one automated payout sweep for the worker process.
func (a Api) RunPayouts(c *gin.Context) {
	var body model2.RunPayouts
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
	}

	if err := a.settle.QueuePayoutRun(body.RequestedBy); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "payout run queued"})
}

// GetPayoutSettings returns the payout settings, creating defaults on first
// read.
func (a Api) GetPayoutSettings(c *gin.Context) {
	resp, err := a.settle.GetPayoutSettings(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdatePayoutSettings stores new payout settings.
func (a Api) UpdatePayoutSettings(c *gin.Context) {
	var body model2.UpdatePayoutSettings
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := body.ValidateUpdatePayoutSettings(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	settings, err := body.ToPayoutSettings()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid minimum payout amount"})
		return
	}

	resp, err := a.settle.UpdatePayoutSettings(c.Request.Context(), settings)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
