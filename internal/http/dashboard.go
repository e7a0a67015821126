package http

import (
	"context"
	"net/http"

	"placement/portal/internal/apperr"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	actor, scope, err := s.guard.ApplicationScope(r.Context(), identity(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	counts, err := s.dashboardCounts(r.Context(), actor, repository.ApplicationFilter{
		UserID:         scope.UserID,
		OrganizationID: scope.OrganizationID,
	})
	if err != nil {
		s.fail(w, r, apperr.Internal("dashboard counts", err))
		return
	}
	writeOK(w, http.StatusOK, "OK", map[string]interface{}{
		"role":   actor.Role,
		"counts": counts,
	})
}

// dashboardCounts aggregates what the actor's role may see. The application
// filter is already restricted to the actor's scope.
func (s *Server) dashboardCounts(ctx context.Context, actor model.User, apps repository.ApplicationFilter) (map[string]interface{}, error) {
	q := s.queries()
	counts := map[string]interface{}{}

	byStatus, err := q.CountApplicationsByStatus(ctx, apps)
	if err != nil {
		return nil, err
	}
	counts["applicationsByStatus"] = byStatus

	switch actor.Role {
	case model.RoleAdmin:
		users, err := q.CountUsersByRole(ctx)
		if err != nil {
			return nil, err
		}
		orgs, err := q.CountOrganizations(ctx)
		if err != nil {
			return nil, err
		}
		offers, err := q.CountOffersByStatus(ctx, "")
		if err != nil {
			return nil, err
		}
		counts["usersByRole"] = users
		counts["organizations"] = orgs
		counts["jobOffersByStatus"] = offers
	case model.RoleOrganization:
		offers, err := q.CountOffersByStatus(ctx, apps.OrganizationID)
		if err != nil {
			return nil, err
		}
		counts["jobOffersByStatus"] = offers
	case model.RoleStudent:
		notifications, err := q.CountNotifications(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		counts["notifications"] = notifications
	}
	return counts, nil
}
