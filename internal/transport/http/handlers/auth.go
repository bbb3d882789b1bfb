package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/infra/logger"
	"github.com/Singularity-Shift/sui-squad/internal/usecase"
)

// AuthHandler completes zkLogin attempts started from chat. The OAuth
// provider redirects the browser here with the id_token in the URL fragment,
// which never reaches the server, so TokenPage ships a small script that
// relays the fragment to KeepToken.
type AuthHandler struct {
	sessions  *usecase.SessionService
	messenger port.Messenger
	logger    *zap.Logger
}

// NewAuthHandler constructs an AuthHandler instance.
func NewAuthHandler(sessions *usecase.SessionService, messenger port.Messenger, log *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, messenger: messenger, logger: log}
}

const tokenRelayPage = `<!DOCTYPE html>
<html>
<head><title>Sui Squad Login</title></head>
<body>
<p id="status">Completing login...</p>
<script>
(function () {
  var params = new URLSearchParams(window.location.hash.substring(1));
  var token = params.get("id_token");
  var state = params.get("state");
  var status = document.getElementById("status");
  if (!token || !state) {
    status.textContent = "Login failed: missing token. Return to Telegram and try /login again.";
    return;
  }
  fetch("/keep", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ token: token, state: state })
  }).then(function (resp) {
    if (resp.ok) {
      status.textContent = "Login complete. You can close this tab and return to Telegram.";
    } else {
      return resp.json().then(function (body) {
        status.textContent = "Login failed: " + (body.error || resp.status) + ". Return to Telegram and try /login again.";
      });
    }
  }).catch(function () {
    status.textContent = "Login failed: could not reach the bot. Return to Telegram and try /login again.";
  });
})();
</script>
</body>
</html>`

// TokenPage serves the fragment relay page the OAuth provider redirects to.
func (h *AuthHandler) TokenPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(tokenRelayPage))
}

// KeepToken receives the relayed id_token, finishes the login, and notifies
// the originating chat.
func (h *AuthHandler) KeepToken(c *gin.Context) {
	var req KeepTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token and state are required"))
		return
	}

	key, _, err := usecase.DecodeLoginState(req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "malformed state parameter"))
		return
	}

	session, err := h.sessions.FinishLogin(c.Request.Context(), key, req.Token)
	if err != nil {
		h.logger.Warn("login completion rejected",
			zap.String("user_key", key.String()),
			zap.String("token", logger.MaskToken(req.Token)),
			zap.Error(err),
		)
		status, message := loginErrorStatus(err)
		c.JSON(status, NewErrorResponse(c, message))
		return
	}

	if h.messenger != nil {
		text := fmt.Sprintf("Login complete. Your %s wallet is %s.", session.Network, logger.MaskAddress(session.Address))
		if err := h.messenger.SendMessage(c.Request.Context(), key.ChatID, text); err != nil {
			h.logger.Warn("notify chat after login", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, LoginCompletedResponse{
		Address:         session.Address,
		Network:         string(session.Network),
		ValidUntilEpoch: session.ValidUntilEpoch,
	})
}
