package controller

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/watchsync/server/internal/domain"
	"github.com/watchsync/server/internal/repository/media"
	"github.com/watchsync/server/internal/service/room"
	"github.com/watchsync/server/pkg/rest"
)

type uploadVideoRequest struct {
	RoomId string `json:"room_id" validate:"required,max=64"`
}

type videoChangePayload struct {
	VideoURL string `json:"videoUrl"`
}

// uploadVideo receives a video file for a room and routes the resulting
// media reference through the media-changed event. No room is created here:
// an upload for an unknown room is rejected and the stored file released.
func (c controller) uploadVideo(w http.ResponseWriter, r *http.Request) {
	req := uploadVideoRequest{RoomId: chi.URLParam(r, "room-id")}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to read upload", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	// sniff the actual content instead of trusting the client header
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "failed to read file"})
		return
	}
	if !strings.HasPrefix(mtype.String(), "video/") {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "only video files are allowed"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to read file"})
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = mtype.Extension()
	}

	videoURL, err := c.mediaStorage.Save(r.Context(), &media.SaveParams{
		RoomId:      req.RoomId,
		Ext:         ext,
		ContentType: mtype.String(),
		Content:     file,
		Size:        header.Size,
	})
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to save upload", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to store file"})
		return
	}

	changeMediaResp, err := c.roomService.ChangeMedia(r.Context(), &room.ChangeMediaParams{
		RoomId:   req.RoomId,
		MediaURL: videoURL,
	})
	if err != nil {
		// the media reference was never attached to a room; release it
		if relErr := c.mediaStorage.Release(r.Context(), videoURL); relErr != nil {
			c.logger.WarnContext(r.Context(), "failed to release orphaned media", "error", relErr)
		}

		if errors.Is(err, room.ErrRoomNotFound) {
			c.logger.InfoContext(r.Context(), "upload for unknown room", "room_id", req.RoomId)
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "room not found"})
			return
		}

		c.logger.WarnContext(r.Context(), "failed to change media", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to change media"})
		return
	}

	c.broadcast(r.Context(), changeMediaResp.Conns, &Output{
		Type:    domain.MsgVideoChange,
		Payload: videoChangePayload{VideoURL: videoURL},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"videoUrl": videoURL})
}
