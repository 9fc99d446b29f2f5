package port

import (
	"context"

	"vision-assist/internal/domain/entity"
)

// DangerClassifier интерфейс vision-language классификатора опасности
type DangerClassifier interface {
	// Classify отправляет пачку кадров и возвращает ответ модели как есть
	Classify(ctx context.Context, frames []entity.ArchivedFrame) (string, error)
}

// DangerNotifier интерфейс внешнего оповещения об опасности
type DangerNotifier interface {
	Notify(ctx context.Context, analysis entity.DangerAnalysis) error
}

// DangerBroadcaster рассылает результат анализа всем открытым соединениям
type DangerBroadcaster interface {
	Broadcast(ctx context.Context, analysis entity.DangerAnalysis) error
}
