package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
//
// До вызова Init используется логгер по умолчанию, чтобы пакеты ядра
// и тесты могли логировать без явной инициализации.
var Log = logrus.New()

// Init инициализирует глобальный логгер.
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init(level, format string) {
	Log = logrus.New()

	// 1. Уровень логирования. По умолчанию - "info".
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// 2. "json" - для продакшена и сбора логов, "text" - для разработки.
	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	Log.SetOutput(os.Stdout)
}

// InitForTests глушит вывод логов в тестах.
func InitForTests() {
	Log = logrus.New()
	Log.SetOutput(io.Discard)
	Log.SetLevel(logrus.DebugLevel)
}

// For возвращает логгер компонента.
func For(component string) *logrus.Entry {
	return Log.WithField("component", component)
}
