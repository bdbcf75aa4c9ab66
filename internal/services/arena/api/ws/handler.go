package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
	"github.com/louisbranch/ironarena/internal/services/arena/app"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
)

const feedLimit = 20

// Handler serves the arena protocol over WebSocket connections.
type Handler struct {
	service  *app.Service
	sessions *Sessions
	upgrader websocket.Upgrader
	locale   string
}

// NewHandler creates a protocol handler over the arena service.
func NewHandler(service *app.Service, sessions *Sessions) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		locale: apperrors.DefaultLocale,
	}
}

// Routes registers the WebSocket endpoint and the liveness probe.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws read from %s: %v", r.RemoteAddr, err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			env = Envelope{}
		}
		reply := h.Handle(r.Context(), env)
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("ws write to %s: %v", r.RemoteAddr, err)
			return
		}
	}
}

// Handle dispatches one request envelope and returns the reply envelope.
func (h *Handler) Handle(ctx context.Context, env Envelope) Envelope {
	switch env.Type {
	case TypeRegister:
		return h.register(ctx, env.Data)
	case TypeAttack:
		return h.attack(ctx, env.Data)
	case TypeRespawn:
		return h.respawn(ctx, env.Data)
	case TypeUpgrade:
		return h.upgrade(ctx, env.Data)
	case TypeAllocateTalent:
		return h.allocateTalent(ctx, env.Data)
	case TypeResetTalents:
		return h.resetTalents(ctx, env.Data)
	case TypeResetPlayer:
		return h.resetPlayer(ctx, env.Data)
	case TypeState:
		return h.state(ctx, env.Data)
	default:
		return h.errorEnvelope(apperrors.WithMetadata(
			apperrors.CodeCommandUnknown,
			fmt.Sprintf("unknown command %q", env.Type),
			map[string]string{"Type": env.Type},
		))
	}
}

func (h *Handler) register(ctx context.Context, data json.RawMessage) Envelope {
	var req RegisterRequest
	if err := decode(data, &req); err != nil {
		return h.errorEnvelope(err)
	}
	if strings.TrimSpace(req.Key) == "" {
		return h.errorEnvelope(apperrors.New(apperrors.CodeRequestMalformed, "register requires a key"))
	}

	id := record.IdentityFromKey(req.Key)
	player, err := h.service.RegisterPlayer(ctx, id)
	if err != nil {
		return h.errorEnvelope(err)
	}
	token, err := h.sessions.Issue(id)
	if err != nil {
		return h.errorEnvelope(err)
	}
	return reply(TypeRegister, RegisterResponse{Player: toPlayerView(player), Token: token})
}

func (h *Handler) attack(ctx context.Context, data json.RawMessage) Envelope {
	var req AttackRequest
	if err := decode(data, &req); err != nil {
		return h.errorEnvelope(err)
	}
	attackerID, err := h.sessions.Verify(req.Token)
	if err != nil {
		return h.errorEnvelope(err)
	}
	victimID, ok := record.ParseIdentity(req.Victim)
	if !ok {
		return h.errorEnvelope(apperrors.New(apperrors.CodeRequestMalformed, "victim must be a hex identity"))
	}

	result, err := h.service.Attack(ctx, attackerID, victimID, req.Hits)
	if err != nil {
		return h.errorEnvelope(err)
	}
	return reply(TypeAttack, AttackResponse{
		Damage:    result.Damage,
		Fatal:     result.Fatal,
		XPAwarded: result.XPAwarded,
	})
}

func (h *Handler) respawn(ctx context.Context, data json.RawMessage) Envelope {
	return h.playerCommand(ctx, data, TypeRespawn, h.service.Respawn)
}

func (h *Handler) upgrade(ctx context.Context, data json.RawMessage) Envelope {
	var req UpgradeRequest
	if err := decode(data, &req); err != nil {
		return h.errorEnvelope(err)
	}
	id, err := h.sessions.Verify(req.Token)
	if err != nil {
		return h.errorEnvelope(err)
	}
	player, err := h.service.UpgradeTier(ctx, id, app.StatKind(req.Stat))
	if err != nil {
		return h.errorEnvelope(err)
	}
	return reply(TypeUpgrade, PlayerResponse{Player: toPlayerView(player)})
}

func (h *Handler) allocateTalent(ctx context.Context, data json.RawMessage) Envelope {
	var req AllocateTalentRequest
	if err := decode(data, &req); err != nil {
		return h.errorEnvelope(err)
	}
	id, err := h.sessions.Verify(req.Token)
	if err != nil {
		return h.errorEnvelope(err)
	}
	player, err := h.service.AllocateTalent(ctx, id, req.Slot)
	if err != nil {
		return h.errorEnvelope(err)
	}
	return reply(TypeAllocateTalent, PlayerResponse{Player: toPlayerView(player)})
}

func (h *Handler) resetTalents(ctx context.Context, data json.RawMessage) Envelope {
	return h.playerCommand(ctx, data, TypeResetTalents, h.service.ResetTalents)
}

func (h *Handler) resetPlayer(ctx context.Context, data json.RawMessage) Envelope {
	return h.playerCommand(ctx, data, TypeResetPlayer, h.service.ResetPlayer)
}

func (h *Handler) playerCommand(
	ctx context.Context,
	data json.RawMessage,
	replyType string,
	op func(context.Context, record.Identity) (record.Player, error),
) Envelope {
	var req SessionRequest
	if err := decode(data, &req); err != nil {
		return h.errorEnvelope(err)
	}
	id, err := h.sessions.Verify(req.Token)
	if err != nil {
		return h.errorEnvelope(err)
	}
	player, err := op(ctx, id)
	if err != nil {
		return h.errorEnvelope(err)
	}
	return reply(replyType, PlayerResponse{Player: toPlayerView(player)})
}

func (h *Handler) state(ctx context.Context, data json.RawMessage) Envelope {
	var req SessionRequest
	if err := decode(data, &req); err != nil {
		return h.errorEnvelope(err)
	}
	id, err := h.sessions.Verify(req.Token)
	if err != nil {
		return h.errorEnvelope(err)
	}
	player, err := h.service.GetPlayer(ctx, id)
	if err != nil {
		return h.errorEnvelope(err)
	}
	arena, err := h.service.GetArena(ctx)
	if err != nil {
		return h.errorEnvelope(err)
	}
	events, err := h.service.RecentEvents(ctx, feedLimit)
	if err != nil {
		return h.errorEnvelope(err)
	}
	return reply(TypeState, StateResponse{
		Player: toPlayerView(player),
		Arena:  toArenaView(arena),
		Events: toEventViews(events),
	})
}

func (h *Handler) errorEnvelope(err error) Envelope {
	payload := apperrors.ToPayload(err, h.locale)
	return reply(TypeError, ErrorResponse{
		Code:    payload.Code,
		Message: payload.Message,
		Status:  payload.Status,
	})
}

func decode(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return apperrors.New(apperrors.CodeRequestMalformed, "missing request payload")
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.Wrap(apperrors.CodeRequestMalformed, "malformed request payload", err)
	}
	return nil
}

func reply(envType string, payload any) Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{Type: TypeError}
	}
	return Envelope{Type: envType, Data: data}
}
