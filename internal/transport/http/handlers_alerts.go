package httptransport

import (
	"net/http"

	dErrors "machsafe/pkg/domain-errors"
	"machsafe/pkg/requestcontext"
)

func (h *Handler) handleGetAllAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	feed, err := h.alerts.GetAllAlerts(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "alert aggregation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate alerts"))
		return
	}

	writeJSON(w, http.StatusOK, feed)
}
