package entity

// LowDanger уровень опасности, при котором оповещения не рассылаются.
const LowDanger = "LOW DANGER"

// DangerAnalysis ответ классификатора опасности по пачке кадров.
type DangerAnalysis struct {
	Level  string
	Source string
}

// Alarming сообщает, нужно ли оповещать о найденной опасности
func (d DangerAnalysis) Alarming() bool {
	return d.Level != "" && d.Level != LowDanger
}

// ArchivedFrame сохранённый на диск кадр.
type ArchivedFrame struct {
	Name string
	Data []byte
}
