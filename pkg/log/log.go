/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package log

import (
	"errors"
	"io"
	stdlog "log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LoggerName = "go-advatek"
	HelpLevels = "Must be one of: error, warning, info, debug."
)

type Logger struct {
	level zap.AtomicLevel
	out   zapcore.WriteSyncer
	file  *lumberjack.Logger
	*zap.SugaredLogger
}

var logger = newLogger(zapcore.Lock(os.Stderr))

func newLogger(out zapcore.WriteSyncer) *Logger {
	l := &Logger{
		level: zap.NewAtomicLevelAt(zapcore.InfoLevel),
		out:   out,
	}
	l.build()
	return l
}

func (l *Logger) build() {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderCfg.CallerKey = ""

	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), l.out, l.level)}
	if l.file != nil {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(l.file), l.level))
	}
	l.SugaredLogger = zap.New(zapcore.NewTee(cores...)).Named(LoggerName).Sugar()
}

func parseLevel(strLevel string) (zapcore.Level, error) {
	levelMapping := map[string]zapcore.Level{
		"error":   zapcore.ErrorLevel,
		"warning": zapcore.WarnLevel,
		"info":    zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
	}
	level, ok := levelMapping[strings.ToLower(strLevel)]
	if !ok {
		return zapcore.InfoLevel, errors.New("Wrong log level. " + HelpLevels)
	}
	return level, nil
}

func SetLevel(strLevel string) error {
	level, err := parseLevel(strLevel)
	if err != nil {
		return err
	}
	logger.level.SetLevel(level)
	return nil
}

func Init(out io.Writer, strLevel string) {
	logger.out = zapcore.Lock(zapcore.AddSync(out))
	logger.build()
	if err := SetLevel(strLevel); err != nil {
		panic(err)
	}
}

// RotateTo additionally writes JSON log lines to a size rotated file
func RotateTo(filename string) {
	logger.file = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	logger.build()
}

// Writer returns a writer that logs every line it gets at info level
func Writer() io.Writer {
	return zap.NewStdLog(logger.Desugar()).Writer()
}

// StdLogger returns a standard library logger for packages that want one
func StdLogger() *stdlog.Logger {
	return zap.NewStdLog(logger.Desugar())
}

func Sync() {
	_ = logger.Sync()
}

func Error(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}

func Warning(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

func Info(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

func Debug(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}
