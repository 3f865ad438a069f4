package utilities

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
	debugLog *log.Logger
	logMutex sync.Mutex
)

func init() {
	// Until SetupLogging runs, everything goes to stdout/stderr only.
	infoLog = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)
	warnLog = log.New(os.Stdout, "WARNING: ", log.Ldate|log.Ltime)
	errorLog = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime)
	debugLog = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime)
}

// SetupLogging routes each level to stdout plus a size-rotated file under
// logDir.
func SetupLogging(logDir string) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	infoWriter := io.MultiWriter(os.Stdout, rotatingFile(filepath.Join(logDir, "info.log")))
	warnWriter := io.MultiWriter(os.Stdout, rotatingFile(filepath.Join(logDir, "warn.log")))
	errorWriter := io.MultiWriter(os.Stderr, rotatingFile(filepath.Join(logDir, "error.log")))

	logMutex.Lock()
	defer logMutex.Unlock()

	infoLog = log.New(infoWriter, "INFO: ", log.Ldate|log.Ltime)
	warnLog = log.New(warnWriter, "WARNING: ", log.Ldate|log.Ltime)
	errorLog = log.New(errorWriter, "ERROR: ", log.Ldate|log.Ltime)
	debugLog = log.New(infoWriter, "DEBUG: ", log.Ldate|log.Ltime)

	// Override Go's default log
	log.SetOutput(infoWriter)
}

func rotatingFile(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func getCallerInfo() string {
	pc, _, _, ok := runtime.Caller(3)
	if !ok {
		return "unknown"
	}
	return runtime.FuncForPC(pc).Name()
}

func logAt(level string, format string, v ...interface{}) {
	logMutex.Lock()
	defer logMutex.Unlock()

	message := fmt.Sprintf(format, v...)
	logEntry := fmt.Sprintf("[%s] %s", getCallerInfo(), message)

	switch level {
	case "WARNING":
		warnLog.Println(logEntry)
	case "ERROR":
		errorLog.Println(logEntry)
	case "DEBUG":
		debugLog.Println(logEntry)
	default:
		infoLog.Println(logEntry)
	}
}

func Info(format string, v ...interface{}) {
	logAt("INFO", format, v...)
}

func Warn(format string, v ...interface{}) {
	logAt("WARNING", format, v...)
}

func Error(format string, v ...interface{}) {
	logAt("ERROR", format, v...)
}

func Debug(format string, v ...interface{}) {
	logAt("DEBUG", format, v...)
}
