package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error    string          `json:"error"`
	Kind     string          `json:"kind,omitempty"`
	Decision domain.Decision `json:"decision,omitempty"`
}

// writeError maps a core failure to a status and a displayable message.
func writeError(c *gin.Context, err error) {
	status, body := describeError(err)
	c.JSON(status, body)
}

func describeError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, domain.ErrLoginRequired), errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "login required", Decision: domain.DecisionRequiresLogin}
	case errors.Is(err, domain.ErrAlreadyOwned):
		return http.StatusConflict, errorResponse{Error: "package already owned", Decision: domain.DecisionAlreadyOwned}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "forbidden", Decision: domain.DecisionDenied}
	case errors.Is(err, domain.ErrPackageNotFound), errors.Is(err, domain.ErrCheckoutNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "session storage unavailable, please retry"}
	}

	kind := domain.KindOf(err)
	body := errorResponse{Error: domain.DetailOf(err), Kind: string(kind)}
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest, body
	case domain.KindAuthFailure:
		return http.StatusUnauthorized, body
	case domain.KindSequencing:
		return http.StatusConflict, body
	case domain.KindBackendRejection:
		return http.StatusBadGateway, body
	case domain.KindNetworkFailure:
		return http.StatusServiceUnavailable, body
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal error"}
}
