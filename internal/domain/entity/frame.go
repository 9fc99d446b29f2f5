package entity

// FrameRequest проверенный запрос на обработку одного кадра.
type FrameRequest struct {
	ImageData  []byte          // закодированное изображение (JPEG/PNG)
	Camera     CameraTransform // ровно один вариант камеры
	Quad       UIQuad          // углы панели интерфейса
	FlipColors bool            // инвертировать хроматические каналы фона
}

// TrackedObject локализованный объект с идентификатором трека.
type TrackedObject struct {
	ID string
	ObjectLocalization
}

// FrameResult итог обработки кадра.
type FrameResult struct {
	Colors  ColorPair       // цвета панели
	Objects []TrackedObject // nil, если ничего не найдено
	Overlay *Overlay        // отладочная разметка
}

// HasObjects флаг наличия объектов
func (r *FrameResult) HasObjects() bool {
	return len(r.Objects) > 0
}
