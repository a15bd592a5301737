package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/damione1/pokersync/internal/security"
)

// RoomHandlers covers the small HTTP surface around rooms: minting fresh
// room IDs and rendering invite QR codes. Rooms themselves are created
// lazily by the first join-room event, so neither endpoint touches the
// registry.
type RoomHandlers struct{}

func NewRoomHandlers() *RoomHandlers {
	return &RoomHandlers{}
}

// CreateRoom mints a new room identifier. The room does not exist until
// someone joins it.
func (h *RoomHandlers) CreateRoom() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		roomID := "room-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"roomId": roomID})
	}
}

// InviteQR renders a PNG QR code of the invite URL for a room.
func (h *RoomHandlers) InviteQR() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		roomID := p.ByName("id")
		if err := security.ValidateRoomID(roomID); err != nil {
			http.Error(w, "invalid room ID", http.StatusBadRequest)
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		inviteURL := scheme + "://" + r.Host + "/?room=" + roomID

		png, err := qrcode.Encode(inviteURL, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to generate QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
