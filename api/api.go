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
	"github.com/gin-gonic/gin"

	"github.com/trovemarket/settle"
	"github.com/trovemarket/settle/api/middleware"
	"github.com/trovemarket/settle/config"
)

type Api struct {
	settle *settle.Settle
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/commissions", a.RecordCommission)
	router.GET("/commissions/:id", a.GetCommission)
	router.GET("/sellers/:seller_id/commissions/pending", a.GetPendingCommissions)
	router.GET("/sellers/:seller_id/payout-amount", a.CalculatePayoutAmount)
	router.GET("/sellers/:seller_id/analytics", a.GetCommissionAnalytics)

	router.POST("/payouts", a.CreatePayout)
	router.GET("/payouts/:id", a.GetPayout)
	router.GET("/payouts/:id/commissions", a.GetPayoutCommissions)
	router.POST("/payouts/:id/complete", a.CompletePayout)
	router.POST("/payouts/:id/fail", a.FailPayout)
	router.GET("/sellers/:seller_id/payouts", a.GetSellerPayouts)
	router.POST("/payouts/run", a.RunPayouts)

	router.GET("/payout-settings", a.GetPayoutSettings)
	router.PUT("/payout-settings", a.UpdatePayoutSettings)

	router.POST("/buyback/evaluate", a.EvaluateItem)
	return a.router
}

func NewAPI(s *settle.Settle) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{settle: s, router: r}
}
