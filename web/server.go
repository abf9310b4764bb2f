// Package web exposes read-only leaderboards over HTTP.
package web

import (
	"net/http"
	"strconv"

	"vitya-bot/leaderboard"
	"vitya-bot/logger"

	"github.com/labstack/echo/v4"
)

type handler struct {
	board *leaderboard.Service
}

func NewServer(board *leaderboard.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	h := &handler{board: board}
	e.GET("/health", h.health)
	e.GET("/api/leaderboard/global", h.global)
	e.GET("/api/leaderboard/chat/:id", h.chat)
	return e
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) global(c echo.Context) error {
	entries, err := h.board.Global(c.Request().Context())
	if err != nil {
		logger.Error("Failed to load global leaderboard: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *handler) chat(c echo.Context) error {
	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid chat id"})
	}
	entries, err := h.board.Chat(c.Request().Context(), chatID)
	if err != nil {
		logger.Error("Failed to load chat leaderboard: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
	}
	return c.JSON(http.StatusOK, entries)
}
