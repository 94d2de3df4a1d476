// Package handler serves the websocket decode endpoint.
package handler

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	xdraw "golang.org/x/image/draw"

	"github.com/kulaginds/bmp-html5/internal/bmp"
	"github.com/kulaginds/bmp-html5/internal/config"
	"github.com/kulaginds/bmp-html5/internal/logging"
	"github.com/kulaginds/bmp-html5/internal/surface"
)

const (
	webSocketReadBufferSize  = 8192
	webSocketWriteBufferSize = 8192 * 4
)

// infoReply is the JSON frame sent ahead of every RGBA frame.
type infoReply struct {
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	BitsPerPixel     int    `json:"bitsPerPixel"`
	Compression      string `json:"compression"`
	ColorCount       int    `json:"colorCount"`
	FileSize         uint32 `json:"fileSize"`
	PixelArrayOffset uint32 `json:"pixelArrayOffset"`

	// Dimensions of the RGBA frame that follows; smaller than the decoded
	// surface when the preview was scaled down.
	FrameWidth  int `json:"frameWidth"`
	FrameHeight int `json:"frameHeight"`
}

type errorReply struct {
	Error string `json:"error"`
}

// Decode upgrades the connection to a websocket and answers each binary BMP
// message with a JSON info frame followed by a binary RGBA frame. Decode
// failures are reported as JSON error frames; the connection stays open.
func Decode(w http.ResponseWriter, r *http.Request) {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			logging.Error("load config: %v", err)
			http.Error(w, "server misconfigured", http.StatusInternalServerError)
			return
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  webSocketReadBufferSize,
		WriteBufferSize: webSocketWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return isAllowedOrigin(r.Header.Get("Origin"), cfg.Security.AllowedOrigins, r.Host)
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("upgrade websocket: %v", err)
		return
	}
	defer func() {
		if err := wsConn.Close(); err != nil {
			logging.Warn("close websocket: %v", err)
		}
	}()

	wsConn.SetReadLimit(cfg.Decoder.MaxInputBytes)

	for {
		msgType, payload, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Warn("read message: %v", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			if err := wsConn.WriteJSON(errorReply{Error: "expected a binary bitmap message"}); err != nil {
				return
			}
			continue
		}

		reply, frame, err := decodePayload(cfg, payload)
		if err != nil {
			logging.Debug("decode payload: %v", err)
			if err := wsConn.WriteJSON(errorReply{Error: err.Error()}); err != nil {
				return
			}
			continue
		}

		if err := wsConn.WriteJSON(reply); err != nil {
			return
		}
		if err := wsConn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
		logging.Info("decoded %dx%d at %d bpp (%s), frame %dx%d",
			reply.Width, reply.Height, reply.BitsPerPixel, reply.Compression,
			reply.FrameWidth, reply.FrameHeight)
	}
}

// decodePayload decodes one bitmap and renders the preview frame.
func decodePayload(cfg *config.Config, payload []byte) (*infoReply, []byte, error) {
	opts := bmp.Options{
		Allocate: surface.Bounded(surface.NewRGBA, cfg.Decoder.MaxWidth, cfg.Decoder.MaxHeight),
	}
	if cfg.Decoder.BottomUpRows {
		opts.RowOrder = bmp.RowOrderBottomUp
	}

	res, err := bmp.Decode(bytes.NewReader(payload), opts)
	if err != nil {
		return nil, nil, err
	}

	rgba, ok := res.Surface.(*surface.RGBA)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected surface type %T", res.Surface)
	}

	img := scaleToPreview(rgba.Img, cfg.Decoder.PreviewEdge)
	b := img.Bounds()

	reply := &infoReply{
		Width:            res.Info.Width,
		Height:           res.Info.Height,
		BitsPerPixel:     res.Info.BitsPerPixel,
		Compression:      res.Info.Compression.String(),
		ColorCount:       res.Info.ColorCount,
		FileSize:         res.Info.FileSize,
		PixelArrayOffset: res.Info.PixelArrayOffset,
		FrameWidth:       b.Dx(),
		FrameHeight:      b.Dy(),
	}
	return reply, img.Pix, nil
}

// scaleToPreview scales the decoded image down so its longest edge fits
// maxEdge, preserving aspect ratio. Images within the bound pass through.
func scaleToPreview(img *image.RGBA, maxEdge int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return img
	}

	dw, dh := w, h
	if w >= h {
		dw = maxEdge
		dh = h * maxEdge / w
	} else {
		dh = maxEdge
		dw = w * maxEdge / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// isAllowedOrigin permits non-browser clients (no Origin header), explicitly
// configured origins, and same-host browser requests when no list is set.
func isAllowedOrigin(origin string, allowedOrigins []string, host string) bool {
	if origin == "" {
		return true
	}

	for _, allowed := range allowedOrigins {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}

	if len(allowedOrigins) == 0 {
		return strings.Contains(origin, host)
	}

	return false
}
