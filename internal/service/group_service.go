package service

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osoko/rosca/internal/events"
	"github.com/osoko/rosca/internal/executor"
	"github.com/osoko/rosca/internal/metrics"
	"github.com/osoko/rosca/internal/middleware"
	"github.com/osoko/rosca/internal/models"
	"github.com/osoko/rosca/internal/pool"
	"github.com/osoko/rosca/internal/storage"
)

type createGroupRequest struct {
	ContributionAmount int64  `json:"contribution_amount"`
	CycleIntervalSecs  int64  `json:"cycle_interval_secs"`
	MemberCount        uint32 `json:"member_count"`
	MinMembers         uint32 `json:"min_members"`
}

type groupResponse struct {
	ID                 uint64 `json:"id"`
	Creator            string `json:"creator"`
	ContributionAmount int64  `json:"contribution_amount"`
	CycleIntervalSecs  int64  `json:"cycle_interval_secs"`
	MemberCount        uint32 `json:"member_count"`
	MinMembers         uint32 `json:"min_members"`
	CurrentCycle       uint32 `json:"current_cycle"`
	Status             string `json:"status"`
	IsActive           bool   `json:"is_active"`
	CreatedAt          int64  `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:                 g.ID,
		Creator:            g.Creator,
		ContributionAmount: g.ContributionAmount,
		CycleIntervalSecs:  g.CycleIntervalSecs,
		MemberCount:        g.MemberCount,
		MinMembers:         g.MinMembers,
		CurrentCycle:       g.CurrentCycle,
		Status:             string(g.Status),
		IsActive:           g.IsActive,
		CreatedAt:          g.CreatedAt,
	}
}

// CreateGroup creates a new group in the Forming state. The authenticated
// caller becomes the creator but still has to join like everyone else.
func (s *Service) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	creator := middleware.GetUserID(r.Context())

	var group *models.Group
	err := s.store.Tx(r.Context(), func(tx storage.Store) error {
		id, err := tx.NextGroupID(r.Context())
		if err != nil {
			return err
		}
		group = models.NewGroup(id, creator, req.ContributionAmount, req.CycleIntervalSecs,
			req.MemberCount, req.MinMembers, s.clock.Now().Unix())
		if err := group.Validate(); err != nil {
			return err
		}
		return tx.CreateGroup(r.Context(), group)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.emitter.Emit(r.Context(), events.Event{
		Type:      events.TypeGroupCreated,
		GroupID:   group.ID,
		Member:    creator,
		Timestamp: group.CreatedAt,
	})
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

type memberResponse struct {
	GroupID        uint64 `json:"group_id"`
	Member         string `json:"member"`
	PayoutPosition uint32 `json:"payout_position"`
	JoinedAt       int64  `json:"joined_at"`
}

// JoinGroup enrolls the authenticated user. Payout positions are assigned
// in join order; the final join activates the group.
func (s *Service) JoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(w, r)
	if !ok {
		return
	}
	member := middleware.GetUserID(r.Context())

	var profile *models.MemberProfile
	var activated bool
	err := s.store.Tx(r.Context(), func(tx storage.Store) error {
		group, err := tx.GetGroup(r.Context(), groupID)
		if err != nil {
			return err
		}
		if group.Status != models.StatusForming {
			return fmt.Errorf("%w: group %d is %s, not enrolling", models.ErrInvalidState, groupID, group.Status)
		}

		count, err := tx.CountMembers(r.Context(), groupID)
		if err != nil {
			return err
		}
		if count >= group.MemberCount {
			return fmt.Errorf("%w: group %d already has %d members", models.ErrGroupFull, groupID, count)
		}

		profile = &models.MemberProfile{
			GroupID:        groupID,
			Member:         member,
			PayoutPosition: count,
			JoinedAt:       s.clock.Now().Unix(),
		}
		if err := tx.AddMember(r.Context(), profile); err != nil {
			return err
		}

		if count+1 == group.MemberCount {
			if err := group.Activate(); err != nil {
				return err
			}
			if err := tx.UpdateGroup(r.Context(), group); err != nil {
				return err
			}
			activated = true
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.emitter.Emit(r.Context(), events.Event{
		Type:      events.TypeMemberJoined,
		GroupID:   groupID,
		Member:    member,
		Timestamp: profile.JoinedAt,
	})
	if activated {
		s.emitter.Emit(r.Context(), events.Event{
			Type:      events.TypeGroupActivated,
			GroupID:   groupID,
			Timestamp: profile.JoinedAt,
		})
	}
	writeJSON(w, http.StatusCreated, memberResponse{
		GroupID:        profile.GroupID,
		Member:         profile.Member,
		PayoutPosition: profile.PayoutPosition,
		JoinedAt:       profile.JoinedAt,
	})
}

type contributeRequest struct {
	Amount int64 `json:"amount"`
}

type contributionResponse struct {
	GroupID   uint64 `json:"group_id"`
	Cycle     uint32 `json:"cycle"`
	Member    string `json:"member"`
	Amount    int64  `json:"amount"`
	CreatedAt int64  `json:"created_at"`
}

// Contribute records the authenticated member's contribution for the
// current cycle and credits the group's custody account. The amount must
// match the group's configured contribution exactly.
func (s *Service) Contribute(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(w, r)
	if !ok {
		return
	}
	member := middleware.GetUserID(r.Context())

	var req contributeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	var contribution *models.Contribution
	err := s.store.Tx(r.Context(), func(tx storage.Store) error {
		group, err := tx.GetGroup(r.Context(), groupID)
		if err != nil {
			return err
		}
		if group.Status != models.StatusActive {
			return fmt.Errorf("%w: group %d is %s, not accepting contributions", models.ErrInvalidState, groupID, group.Status)
		}
		if _, err := tx.GetMember(r.Context(), groupID, member); err != nil {
			return err
		}
		if req.Amount != group.ContributionAmount {
			return fmt.Errorf("%w: contribution must be exactly %d, got %d",
				models.ErrInvalidAmount, group.ContributionAmount, req.Amount)
		}

		contribution = &models.Contribution{
			GroupID:   groupID,
			Cycle:     group.CurrentCycle,
			Member:    member,
			Amount:    req.Amount,
			CreatedAt: s.clock.Now().Unix(),
		}
		if err := tx.RecordContribution(r.Context(), contribution); err != nil {
			return err
		}
		return tx.Deposit(r.Context(), executor.CustodyAccount(groupID), req.Amount)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.ContributionsTotal.Inc()
	s.emitter.Emit(r.Context(), events.Event{
		Type:      events.TypeContributionRecorded,
		GroupID:   groupID,
		Cycle:     contribution.Cycle,
		Member:    member,
		Amount:    contribution.Amount,
		Timestamp: contribution.CreatedAt,
	})
	writeJSON(w, http.StatusCreated, contributionResponse{
		GroupID:   contribution.GroupID,
		Cycle:     contribution.Cycle,
		Member:    contribution.Member,
		Amount:    contribution.Amount,
		CreatedAt: contribution.CreatedAt,
	})
}

// GetGroup returns a group's configuration and lifecycle state.
func (s *Service) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(w, r)
	if !ok {
		return
	}
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

// GetPool returns the pool snapshot for the group's current cycle, or for
// the cycle given by the ?cycle= query parameter.
func (s *Service) GetPool(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(w, r)
	if !ok {
		return
	}

	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	cycle := group.CurrentCycle
	if raw := r.URL.Query().Get("cycle"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeBadRequest(w, "invalid cycle")
			return
		}
		cycle = uint32(parsed)
	}

	info, err := pool.NewCalculator(s.store, s.store).PoolInfo(r.Context(), groupID, cycle)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type payoutResponse struct {
	GroupID   uint64 `json:"group_id"`
	Cycle     uint32 `json:"cycle"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

// GetPayout returns the immutable payout record for a cycle.
func (s *Service) GetPayout(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(w, r)
	if !ok {
		return
	}
	cycleRaw := chi.URLParam(r, "cycle")
	cycle, err := strconv.ParseUint(cycleRaw, 10, 32)
	if err != nil {
		writeBadRequest(w, "invalid cycle")
		return
	}

	record, found, err := s.store.GetPayout(r.Context(), groupID, uint32(cycle))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no payout for cycle", Kind: "payout_not_found"})
		return
	}
	writeJSON(w, http.StatusOK, payoutResponse{
		GroupID:   record.GroupID,
		Cycle:     record.Cycle,
		Recipient: record.Recipient,
		Amount:    record.Amount,
		Timestamp: record.Timestamp,
	})
}

type balanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

// GetBalance returns a treasury account balance.
func (s *Service) GetBalance(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	balance, err := s.store.Balance(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Account: account, Balance: balance})
}

func groupIDFromURL(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "groupID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeBadRequest(w, "invalid group id")
		return 0, false
	}
	return id, true
}
