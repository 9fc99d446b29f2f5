package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
	"vision-assist/internal/geometry"
	"vision-assist/internal/palette"
)

const (
	frameW = 64
	frameH = 48
)

func encodedFrame(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(frameW, frameH, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func trackID(v int) *int { return &v }

func testRequest(t *testing.T) entity.FrameRequest {
	return entity.FrameRequest{
		ImageData: encodedFrame(t),
		Camera: entity.QuaternionCamera{
			Rotation:   entity.Quaternion{W: 1},
			Intrinsics: entity.Intrinsics{Fx: 10, Fy: 10, Cx: 32, Cy: 24},
		},
		Quad: entity.UIQuad{{X: 0.25, Y: 0.25}, {X: 0.75, Y: 0.25}, {X: 0.75, Y: 0.75}, {X: 0.25, Y: 0.75}},
	}
}

func testDetections() []entity.Detection {
	return []entity.Detection{
		{Box: &entity.Rect{X1: 10, Y1: 10, X2: 30, Y2: 40}, Class: "person", TrackID: trackID(7)},
		{Box: &entity.Rect{X1: 0, Y1: 0, X2: 5, Y2: 5}, Class: "chair", TrackID: trackID(8)},
		{Class: "person"},
	}
}

func uniformDepth(v float32) *entity.DepthField {
	field := entity.NewDepthField(frameW, frameH)
	for i := range field.Data {
		field.Data[i] = v
	}
	return field
}

func TestFrameService_Process(t *testing.T) {
	archive := newMemArchive()
	svc := NewFrameService(FrameDeps{
		Detector: &fakeDetector{dets: testDetections()},
		Depth:    &fakeDepth{field: uniformDepth(2)},
		Archive:  archive,
	})

	res, err := svc.Process(context.Background(), "s1", testRequest(t))
	require.NoError(t, err)
	require.Nil(t, res.Overlay)

	require.Len(t, res.Objects, 1)
	obj := res.Objects[0]
	require.Equal(t, "7", obj.ID)
	require.InDelta(t, (20.0-32)/10*2, obj.Position.X, 1e-9)
	require.InDelta(t, (25.0-24)/10*2, obj.Position.Y, 1e-9)
	require.InDelta(t, 2.0, obj.Position.Z, 1e-9)
	require.InDelta(t, 4.0, obj.Width, 1e-9)
	require.InDelta(t, 6.0, obj.Height, 1e-9)

	require.GreaterOrEqual(t, palette.PairContrast(res.Colors), palette.DefaultTargetContrast)
	require.True(t, archive.has(ArchiveName("s1")))
}

func TestFrameService_DetectorAndDepthFailures(t *testing.T) {
	svc := NewFrameService(FrameDeps{
		Detector:  &fakeDetector{dets: testDetections()[:1]},
		Depth:     &fakeDepth{err: errors.New("model offline")},
		Localizer: geometry.NewLocalizer(3, false),
	})

	res, err := svc.Process(context.Background(), "s1", testRequest(t))
	require.NoError(t, err)
	require.Len(t, res.Objects, 1)
	require.InDelta(t, 3.0, res.Objects[0].Position.Z, 1e-9)

	svc = NewFrameService(FrameDeps{Detector: &fakeDetector{err: errors.New("boom")}})
	res, err = svc.Process(context.Background(), "s1", testRequest(t))
	require.NoError(t, err)
	require.False(t, res.HasObjects())
	require.Nil(t, res.Objects)
	require.GreaterOrEqual(t, palette.PairContrast(res.Colors), palette.DefaultTargetContrast)
}

func TestFrameService_TracksPerSession(t *testing.T) {
	left := &entity.Rect{X1: 2, Y1: 10, X2: 22, Y2: 40}
	right := &entity.Rect{X1: 40, Y1: 10, X2: 60, Y2: 40}
	person := func(box *entity.Rect) []entity.Detection {
		return []entity.Detection{{Box: box, Class: "person"}}
	}

	detector := &queueDetector{frames: [][]entity.Detection{
		person(left),  // a
		person(right), // b
		person(left),  // a
		person(right), // a
		person(right), // a после Forget
	}}
	created := 0
	svc := NewFrameService(FrameDeps{
		Detector: detector,
		NewTracker: func() port.ObjectTracker {
			created++
			return newBoxTracker()
		},
	})
	ctx := context.Background()

	id := func(sessionID string) string {
		res, err := svc.Process(ctx, sessionID, testRequest(t))
		require.NoError(t, err)
		require.Len(t, res.Objects, 1)
		return res.Objects[0].ID
	}

	require.Equal(t, "1", id("a"))
	require.Equal(t, "1", id("b"))
	require.Equal(t, "1", id("a"))
	require.Equal(t, "2", id("a"))
	require.Equal(t, 2, created)

	require.NoError(t, svc.Forget(ctx, "a"))
	require.Equal(t, "1", id("a"))
	require.Equal(t, 3, created)
}

func TestFrameService_MismatchedDepthUsesFallback(t *testing.T) {
	svc := NewFrameService(FrameDeps{
		Detector: &fakeDetector{dets: testDetections()[:1]},
		Depth:    &fakeDepth{field: entity.NewDepthField(8, 8)},
	})

	res, err := svc.Process(context.Background(), "s1", testRequest(t))
	require.NoError(t, err)
	require.Len(t, res.Objects, 1)
	require.InDelta(t, geometry.DefaultFallbackDepth, res.Objects[0].Position.Z, 1e-9)
}

func TestFrameService_MatrixCamera(t *testing.T) {
	req := testRequest(t)
	req.Camera = entity.MatrixCamera{
		InvViewProjection: [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		Position:          r3.Vector{},
	}
	svc := NewFrameService(FrameDeps{
		Detector: &fakeDetector{dets: []entity.Detection{
			{Box: &entity.Rect{X1: 22, Y1: 14, X2: 42, Y2: 34}, Class: "person"},
		}},
	})

	res, err := svc.Process(context.Background(), "s1", req)
	require.NoError(t, err)
	require.Len(t, res.Objects, 1)
	require.Equal(t, entity.NoTrackID, res.Objects[0].ID)
	require.InDelta(t, 0, res.Objects[0].Position.X, 1e-9)
	require.InDelta(t, 0, res.Objects[0].Position.Y, 1e-9)
	require.InDelta(t, -geometry.DefaultFallbackDepth, res.Objects[0].Position.Z, 1e-9)
}

func TestFrameService_DebugOverlay(t *testing.T) {
	debug := newMemArchive()
	renderer := &fakeRenderer{}
	svc := NewFrameService(FrameDeps{
		Detector: &fakeDetector{dets: testDetections()},
		Debug:    debug,
		Renderer: renderer,
	})

	res, err := svc.Process(context.Background(), "s1", testRequest(t))
	require.NoError(t, err)
	require.NotNil(t, res.Overlay)
	require.Len(t, res.Overlay.Boxes, 1)
	require.Equal(t, image.Rect(10, 10, 30, 40), res.Overlay.Boxes[0])
	require.Equal(t, image.Rect(16, 12, 48, 36), res.Overlay.Interior)
	require.False(t, res.Overlay.Exterior.Empty())
	require.True(t, debug.has(DebugName("s1")))
	require.Len(t, renderer.overlays, 1)

	require.NoError(t, svc.Forget(context.Background(), "s1"))
	require.False(t, debug.has(DebugName("s1")))
}

func TestFrameService_InvalidImage(t *testing.T) {
	svc := NewFrameService(FrameDeps{})
	req := testRequest(t)
	req.ImageData = []byte("not an image")

	_, err := svc.Process(context.Background(), "s1", req)
	require.Error(t, err)
}

func TestFrameService_CancelledContext(t *testing.T) {
	svc := NewFrameService(FrameDeps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, "s1", testRequest(t))
	require.ErrorIs(t, err, context.Canceled)
}
