package handlers

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/services"
	"github.com/khadmahq/khadma/internal/utils"
)

type UploadHandler struct {
	svc services.UploadService
}

func NewUploadHandler(svc services.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// allowed extensions and detected content-type prefixes per file kind
var uploadRules = map[models.FileKind]struct {
	exts    []string
	ctypes  []string
	maxSize int64
}{
	models.FileAvatar:     {exts: []string{".png", ".jpg", ".jpeg", ".webp"}, ctypes: []string{"image/"}, maxSize: 5 << 20},
	models.FileCV:         {exts: []string{".pdf"}, ctypes: []string{"application/pdf"}, maxSize: 10 << 20},
	models.FileVoicePitch: {exts: []string{".wav", ".mp3", ".ogg", ".webm"}, ctypes: []string{"audio/", "video/webm", "application/octet-stream"}, maxSize: 10 << 20},
}

// Upload receives a multipart profile file. The path parameter picks
// the kind: avatar, cv, or voice_pitch.
func (h *UploadHandler) Upload(c *gin.Context) {
	const op = "UploadHandler.Upload"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	kind := models.FileKind(c.Param("kind"))
	rule, known := uploadRules[kind]
	if !known {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "unknown file kind", nil))
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !containsString(rule.exts, ext) {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file extension not allowed for "+string(kind), nil))
		return
	}
	if fh.Size <= 0 || fh.Size > rule.maxSize {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file empty or too large", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff content type (read 512 bytes)
	head := make([]byte, 512)
	n, _ := file.Read(head)
	head = head[:n]
	ct := http.DetectContentType(head)
	if !contentTypeAllowed(rule.ctypes, ct) {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid content type for "+string(kind), nil))
		return
	}

	// re-compose stream: head + remaining file
	r := &readJoin{a: bytes.NewReader(head), b: file}

	row, err := h.svc.Upload(c.Request.Context(), userID, kind, fh.Filename, int(fh.Size), ct, r)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, row)
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func contentTypeAllowed(prefixes []string, ct string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(ct, p) {
			return true
		}
	}
	return false
}

type readJoin struct {
	a *bytes.Reader
	b io.Reader
}

func (r *readJoin) Read(p []byte) (int, error) {
	if r.a != nil && r.a.Len() > 0 {
		return r.a.Read(p)
	}
	return r.b.Read(p)
}
