package file

import (
	"bitwise74/file-drop/internal"
	"bitwise74/file-drop/internal/service"
	"bitwise74/file-drop/pkg/util"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func FileDownload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	code := c.Param("fileCode")
	if !util.IsAccessCode(code) {
		respondError(c, requestID, errInvalidCode)
		return
	}

	dl, err := d.Files.Download(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrStorage) {
			zap.L().Error("Failed to serve download", zap.String("requestID", requestID), zap.String("code", code), zap.Error(err))
		}

		respondError(c, requestID, err)
		return
	}
	defer dl.Content.Close()

	maxAge := max(0, int(time.Until(dl.ExpiresAt).Seconds()))

	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.Content, map[string]string{
		"Content-Disposition": contentDisposition(dl.Name),
		"Expires":             dl.ExpiresAt.UTC().Format(http.TimeFormat),
		"Cache-Control":       fmt.Sprintf("private, max-age=%d", maxAge),
	})
}

// contentDisposition keeps the original name in the quoted filename and adds
// the RFC 5987 form for names that aren't plain ASCII
func contentDisposition(name string) string {
	v := fmt.Sprintf(`attachment; filename="%s"`, quoteEscaper.Replace(name))

	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return v + "; filename*=UTF-8''" + url.PathEscape(name)
		}
	}

	return v
}
