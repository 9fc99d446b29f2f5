// Package api websocket-транспорт: разбор входящих кадров и отправка результатов.
package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"vision-assist/internal/domain/entity"
)

const (
	TypeColor          = "color"
	TypeFrameData      = "frame_data"
	TypeDangerAnalysis = "danger_analysis"
)

// ErrIgnoredMessage сообщение не является кадром и пропускается
var ErrIgnoredMessage = errors.New("ignored message")

type vec3JSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type quatJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// inboundMessage кадр от клиента; камера приходит матрицей или кватернионом
type inboundMessage struct {
	Type            string             `json:"type"`
	ImageData       string             `json:"imageData"`
	Data            *vec3JSON          `json:"data"`
	InvMat          map[string]float64 `json:"invMat"`
	Position        *vec3JSON          `json:"position"`
	Rotation        *quatJSON          `json:"rotation"`
	Fx              *float64           `json:"fx"`
	Fy              *float64           `json:"fy"`
	Cx              *float64           `json:"cx"`
	Cy              *float64           `json:"cy"`
	UIScreenCorners []vec3JSON         `json:"UIScreenCorners"`
	FlipColors      bool               `json:"flipColors"`
}

type colorJSON struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

type guiColorsJSON struct {
	Background colorJSON `json:"background_color"`
	Text       colorJSON `json:"text_color"`
}

type objectJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type frameDataMessage struct {
	Type      string        `json:"type"`
	GUIColors guiColorsJSON `json:"gui_colors"`
	Objects   []objectJSON  `json:"objects"`
}

type dangerMessage struct {
	Type         string `json:"type"`
	DangerLevel  string `json:"danger_level"`
	DangerSource string `json:"danger_source"`
}

// ParseFrameRequest проверяет входящее сообщение и собирает запрос на кадр.
// Неполная камера не отменяет кадр: Camera остаётся nil, причина
// возвращается в cameraErr, а цвета панели всё равно считаются.
func ParseFrameRequest(data []byte) (req entity.FrameRequest, cameraErr error, err error) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return req, nil, errors.Wrap(err, "decode message")
	}
	if msg.Type != TypeColor {
		return req, nil, errors.Wrapf(ErrIgnoredMessage, "type %q", msg.Type)
	}
	if msg.ImageData == "" {
		return req, nil, errors.New("missing imageData")
	}

	frame, err := decodeImageData(msg.ImageData)
	if err != nil {
		return req, nil, err
	}

	camera, cameraErr := msg.camera()
	if cameraErr != nil {
		camera = nil
	}

	req = entity.FrameRequest{
		ImageData:  frame,
		Camera:     camera,
		Quad:       quadFromCorners(msg.UIScreenCorners),
		FlipColors: msg.FlipColors,
	}
	return req, cameraErr, nil
}

// quadFromCorners берёт первые четыре угла; недостающие повторяют последний
// присланный, чтобы четырёхугольник вырождался, а не тянулся к началу координат
func quadFromCorners(corners []vec3JSON) entity.UIQuad {
	var quad entity.UIQuad
	if len(corners) == 0 {
		return quad
	}
	for i := range quad {
		c := corners[len(corners)-1]
		if i < len(corners) {
			c = corners[i]
		}
		quad[i] = entity.Point2{X: c.X, Y: c.Y}
	}
	return quad
}

// camera выбирает вариант камеры; матрица важнее кватерниона
func (m *inboundMessage) camera() (entity.CameraTransform, error) {
	if m.InvMat != nil && m.Data != nil {
		var cam entity.MatrixCamera
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				key := fmt.Sprintf("e%d%d", row, col)
				v, ok := m.InvMat[key]
				if !ok {
					return nil, errors.Errorf("invMat is missing %s", key)
				}
				cam.InvViewProjection[row*4+col] = v
			}
		}
		cam.Position = r3.Vector{X: m.Data.X, Y: m.Data.Y, Z: m.Data.Z}
		return cam, nil
	}

	if m.Position != nil && m.Rotation != nil && m.Fx != nil && m.Fy != nil && m.Cx != nil && m.Cy != nil {
		return entity.QuaternionCamera{
			Rotation:   entity.Quaternion{X: m.Rotation.X, Y: m.Rotation.Y, Z: m.Rotation.Z, W: m.Rotation.W},
			Position:   r3.Vector{X: m.Position.X, Y: m.Position.Y, Z: m.Position.Z},
			Intrinsics: entity.Intrinsics{Fx: *m.Fx, Fy: *m.Fy, Cx: *m.Cx, Cy: *m.Cy},
		}, nil
	}

	return nil, errors.New("message has neither invMat+data nor position+rotation+intrinsics")
}

// decodeImageData принимает чистый base64 или data URL
func decodeImageData(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if raw, rerr := base64.RawStdEncoding.DecodeString(s); rerr == nil {
			return raw, nil
		}
		return nil, errors.Wrap(err, "decode imageData")
	}
	return data, nil
}

func toColorJSON(c entity.RGB) colorJSON {
	return colorJSON{R: c.R, G: c.G, B: c.B}
}

// EncodeFrameResult собирает сообщение frame_data; без объектов поле objects равно null
func EncodeFrameResult(res *entity.FrameResult) ([]byte, error) {
	msg := frameDataMessage{
		Type: TypeFrameData,
		GUIColors: guiColorsJSON{
			Background: toColorJSON(res.Colors.Background),
			Text:       toColorJSON(res.Colors.Text),
		},
	}
	for _, o := range res.Objects {
		msg.Objects = append(msg.Objects, objectJSON{
			X: o.Position.X, Y: o.Position.Y, Z: o.Position.Z,
			ID:    o.ID,
			Width: o.Width, Height: o.Height,
		})
	}
	data, err := json.Marshal(msg)
	return data, errors.Wrap(err, "encode frame_data")
}

// EncodeDangerAnalysis собирает сообщение danger_analysis
func EncodeDangerAnalysis(a entity.DangerAnalysis) ([]byte, error) {
	data, err := json.Marshal(dangerMessage{
		Type:         TypeDangerAnalysis,
		DangerLevel:  a.Level,
		DangerSource: a.Source,
	})
	return data, errors.Wrap(err, "encode danger_analysis")
}
