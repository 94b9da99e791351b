package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/abiharness/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the harness is configured. Each
// package should create its own sub-logger. This allows to create unique logging instances depending on the use case.
var GlobalLogger = NewLogger(zerolog.Disabled)

// Logger describes a custom logging object that can log events to any arbitrary channel in structured, unstructured,
// or unstructured-and-colorized format.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// context describes the key-value pairs attached to every event emitted by this logger (e.g. the service name).
	context map[string]string

	// structuredLogger describes a logger that will be used to output structured JSON logs to structuredWriters.
	structuredLogger zerolog.Logger

	// structuredWriters describes the writers receiving structured output.
	structuredWriters []io.Writer

	// unstructuredLogger describes a logger that will be used to output non-colorized, unstructured logs.
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the writers receiving non-colorized, unstructured output.
	unstructuredWriters []io.Writer

	// unstructuredColorLogger describes a logger that will be used to output colorized, unstructured logs.
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the writers receiving colorized, unstructured output.
	unstructuredColorWriters []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. Writers can be added with AddWriter.
func NewLogger(level zerolog.Level) *Logger {
	return &Logger{
		level:                    level,
		context:                  make(map[string]string),
		structuredLogger:         zerolog.New(nil).Level(zerolog.Disabled),
		structuredWriters:        make([]io.Writer, 0),
		unstructuredLogger:       zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredWriters:      make([]io.Writer, 0),
		unstructuredColorLogger:  zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredColorWriters: make([]io.Writer, 0),
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some key
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subLogger := &Logger{
		level:                    l.level,
		context:                  make(map[string]string, len(l.context)+1),
		structuredWriters:        l.structuredWriters,
		unstructuredWriters:      l.unstructuredWriters,
		unstructuredColorWriters: l.unstructuredColorWriters,
	}
	for k, v := range l.context {
		subLogger.context[k] = v
	}
	subLogger.context[key] = value
	subLogger.rebuild()
	return subLogger
}

// AddWriter will add a writer to the list of channels where log output will be sent. Unstructured writers can be
// colorized or not. Adding a writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for _, w := range *writers {
		if w == writer {
			return
		}
	}
	*writers = append(*writers, writer)
	l.rebuild()
}

// RemoveWriter will remove a writer from the list of writers that the logger manages. If the writer does not exist,
// this function is a no-op
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for i, w := range *writers {
		if w == writer {
			*writers = append((*writers)[:i], (*writers)[i+1:]...)
			break
		}
	}
	l.rebuild()
}

// writersFor returns the writer list that matches the provided format and colorization.
func (l *Logger) writersFor(format LogFormat, colored bool) *[]io.Writer {
	if format == STRUCTURED {
		return &l.structuredWriters
	}
	if colored {
		return &l.unstructuredColorWriters
	}
	return &l.unstructuredWriters
}

// rebuild recreates the underlying zerolog loggers from the current writer lists, level and context.
func (l *Logger) rebuild() {
	l.structuredLogger = l.withContext(zerolog.New(nil).Level(zerolog.Disabled))
	if len(l.structuredWriters) > 0 {
		l.structuredLogger = l.withContext(zerolog.New(zerolog.MultiLevelWriter(l.structuredWriters...)).Level(l.level).With().Timestamp().Logger())
	}

	l.unstructuredLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.unstructuredWriters) > 0 {
		writers := make([]io.Writer, 0, len(l.unstructuredWriters))
		for _, w := range l.unstructuredWriters {
			writers = append(writers, setupDefaultFormatting(zerolog.ConsoleWriter{Out: w, NoColor: true}, l.level))
		}
		l.unstructuredLogger = l.withContext(zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(l.level))
	}

	l.unstructuredColorLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.unstructuredColorWriters) > 0 {
		writers := make([]io.Writer, 0, len(l.unstructuredColorWriters))
		for _, w := range l.unstructuredColorWriters {
			writers = append(writers, setupDefaultFormatting(zerolog.ConsoleWriter{Out: w, NoColor: !colors.Enabled()}, l.level))
		}
		l.unstructuredColorLogger = l.withContext(zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(l.level))
	}
}

// withContext attaches the logger's key-value context to the provided zerolog.Logger.
func (l *Logger) withContext(logger zerolog.Logger) zerolog.Logger {
	ctx := logger.With()
	for k, v := range l.context {
		ctx = ctx.Str(k, v)
	}
	return ctx.Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.rebuild()
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event.
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the messages for the provided arguments and sends them to every configured channel at the given level.
func (l *Logger) log(level zerolog.Level, args ...any) {
	// Build the messages and retrieve any error or associated structured log info
	colorMsg, noColorMsg, err, info := buildMsgs(args...)

	// Instantiate log events
	structuredLog := l.structuredLogger.WithLevel(level)
	unstructuredLog := l.unstructuredLogger.WithLevel(level)
	unstructuredColorLog := l.unstructuredColorLogger.WithLevel(level)

	// Chain the error. Stack traces are only attached in debug mode or for panics.
	debug := l.level <= zerolog.DebugLevel || level == zerolog.PanicLevel
	for _, event := range []*zerolog.Event{structuredLog, unstructuredLog, unstructuredColorLog} {
		event.Err(err)
		if debug {
			event.Stack()
		}
		if info != nil {
			event.Any("info", info)
		}
	}

	// Send the events. The structured event is deferred so that all channels receive a panic log.
	defer structuredLog.Msg(noColorMsg)
	unstructuredLog.Msg(noColorMsg)
	unstructuredColorLog.Msg(colorMsg)

	if level == zerolog.PanicLevel {
		panic(noColorMsg)
	}
}

// buildMsgs describes a function that takes in a variadic list of arguments of any type and returns two strings and,
// optionally, an error and a StructuredLogInfo object. The first string will be a colorized-string that can be used for
// console logging while the second string will be a non-colorized one that can be used for file/structured logging.
// The error and the StructuredLogInfo can be used to add additional context to log messages
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	// Guard clause
	if len(args) == 0 {
		return "", "", nil, nil
	}

	// Initialize the base color context, the string buffers and the structured log info object
	colorCtx := colors.Reset
	colorOutput := make([]string, 0)
	noColorOutput := make([]string, 0)
	var info StructuredLogInfo
	var err error

	// Iterate through each argument in the list and switch on type
	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// If the argument is a color function, switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		case error:
			// Note that only one error can be provided for each log message
			err = t
		default:
			// In the base case, append the object to the two string buffers. The colorized buffer will have the
			// current color context applied to it.
			colorOutput = append(colorOutput, colorCtx(t))
			noColorOutput = append(noColorOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorOutput, ""), strings.Join(noColorOutput, ""), err, info
}

// setupDefaultFormatting will update the console writer's formatting to the harness standard
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	// Get rid of the timestamp for console output
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	// We will define a custom format for each level
	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsed, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		// Colors are applied by the console writer itself only when NoColor is unset.
		colorize := colors.Reset
		if !writer.NoColor {
			colorize = levelColor(parsed)
		}

		// Info is rendered as an arrow glyph, everything else as its level name
		if parsed == zerolog.InfoLevel {
			return colorize(colors.LEFT_ARROW)
		}
		return colorize(levelStr)
	}

	// If we are above debug level, we want to get rid of the `service` component when logging to console
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{SERVICE_KEY}
	}

	return writer
}

// levelColor returns the color function used to render a given log level.
func levelColor(level zerolog.Level) colors.ColorFunc {
	switch level {
	case zerolog.TraceLevel:
		return colors.CyanBold
	case zerolog.DebugLevel:
		return colors.BlueBold
	case zerolog.InfoLevel:
		return colors.GreenBold
	case zerolog.WarnLevel:
		return colors.YellowBold
	default:
		return colors.RedBold
	}
}
