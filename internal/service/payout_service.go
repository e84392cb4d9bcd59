package service

import (
	"net/http"

	"github.com/osoko/rosca/internal/metrics"
)

type executePayoutResponse struct {
	Payout payoutResponse `json:"payout"`
	Group  groupResponse  `json:"group"`
}

// ExecutePayout triggers the payout protocol for a group. Deliberately
// unauthenticated: any caller may trigger it, eligibility is decided
// entirely by group state.
func (s *Service) ExecutePayout(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(w, r)
	if !ok {
		return
	}

	result, err := s.executor.ExecutePayout(r.Context(), groupID)
	if err != nil {
		metrics.PayoutsTotal.WithLabelValues(errorKind(err)).Inc()
		writeError(w, err)
		return
	}
	metrics.PayoutsTotal.WithLabelValues("success").Inc()
	metrics.PayoutAmountTotal.Add(float64(result.Amount))
	if result.GroupCompleted {
		metrics.GroupsCompletedTotal.Inc()
	}

	// The payout fields come from the attempt itself; the group snapshot is
	// informational and may already reflect later activity.
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, executePayoutResponse{
		Payout: payoutResponse{
			GroupID:   groupID,
			Cycle:     result.Cycle,
			Recipient: result.Recipient,
			Amount:    result.Amount,
			Timestamp: result.Timestamp,
		},
		Group: toGroupResponse(group),
	})
}
