package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/luna-backend/internal/chat"
	"github.com/suPer8Hu/luna-backend/internal/common"
	"github.com/suPer8Hu/luna-backend/internal/metrics"
)

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	turn, err := h.ChatSvc.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		metrics.ChatTurnsTotal.WithLabelValues("model", "error").Inc()
		if errors.Is(err, chat.ErrInference) {
			h.Log.Errorf("[SendChatMessage] request_id=%s err=%v", requestID(c), err)
			common.Fail(c, http.StatusInternalServerError, 50002, "Failed to get a reply. Please try again.")
			return
		}
		h.internalError(c, "SendChatMessage", err)
		return
	}

	source := "model"
	if turn.Canned {
		source = "canned"
	}
	metrics.ChatTurnsTotal.WithLabelValues(source, "ok").Inc()

	common.OK(c, gin.H{"reply": turn.Reply})
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.ChatSvc.History(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "ListChatMessages", err)
		return
	}

	common.OK(c, gin.H{"messages": entries})
}
