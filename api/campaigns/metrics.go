package campaigns

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCampaignsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helm_api_campaigns_created_total",
		Help: "Campaigns created through the api.",
	})
	metricCampaignsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helm_api_campaigns_cancelled_total",
		Help: "Campaigns cancelled through the api.",
	})
	metricWinnerMemoHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helm_api_winner_memo_hits_total",
		Help: "Winner lookups answered from the memo.",
	})
)
