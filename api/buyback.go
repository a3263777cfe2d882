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

	"github.com/gin-gonic/gin"

	model2 "github.com/trovemarket/settle/api/model"
)

// EvaluateItem produces a buyback valuation for an item. The endpoint always
// returns a valuation: when the AI provider is unavailable the response
// carries the rule-based fallback estimate with its low confidence marker.
func (a Api) EvaluateItem(c *gin.Context) {
	var item model2.EvaluateItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := item.ValidateEvaluateItem(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp := a.settle.Valuation().EvaluateItem(c.Request.Context(), item.ToItemDetails())
	c.JSON(http.StatusOK, resp)
}
