package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vzahanych/weather-tools-service/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// UnknownToolLabel is the tool name reported to the metrics recorder for
// calls naming a tool that is not registered.
const UnknownToolLabel = "unknown"

// MetricsRecorder receives one event per call. outcome is "success",
// "fault", "invalid" or "unknown"; tool is always a registered name or
// UnknownToolLabel.
type MetricsRecorder interface {
	RecordToolCall(ctx context.Context, tool, outcome string)
}

type Toolkit struct {
	mu      sync.RWMutex
	tools   []*Tool
	byName  map[string]*Tool
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics MetricsRecorder
}

func NewToolkit(logger *zap.Logger, tele *telemetry.Telemetry) *Toolkit {
	return &Toolkit{
		byName: make(map[string]*Tool),
		logger: logger,
		tele:   tele,
	}
}

// SetMetricsRecorder sets the metrics recorder for the toolkit
func (k *Toolkit) SetMetricsRecorder(metrics MetricsRecorder) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.metrics = metrics
}

func (k *Toolkit) Register(tools ...*Tool) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, t := range tools {
		if _, exists := k.byName[t.Name()]; exists {
			return fmt.Errorf("tool %q already registered", t.Name())
		}
		k.byName[t.Name()] = t
		k.tools = append(k.tools, t)
		k.logger.Debug("Registered tool", zap.String("tool", t.Name()))
	}
	return nil
}

func (k *Toolkit) Lookup(name string) (*Tool, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	t, ok := k.byName[name]
	return t, ok
}

// Tools returns every registered tool in registration order.
func (k *Toolkit) Tools() []*Tool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]*Tool(nil), k.tools...)
}

// Definitions describes the listed tools in registration order.
func (k *Toolkit) Definitions() DefinitionsResponse {
	defs := DefinitionsResponse{Tools: []ToolDefinition{}}
	for _, t := range k.Tools() {
		if t.Listed() {
			defs.Tools = append(defs.Tools, t.Definition())
		}
	}
	return defs
}

// Call validates args and runs the named tool. A non-nil error means the call
// was rejected before the handler ran: ErrUnknownTool or *ValidationError.
// Handler failures are reported through Result.Fault.
func (k *Toolkit) Call(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	k.mu.RLock()
	metrics := k.metrics
	k.mu.RUnlock()

	record := func(tool, outcome string) {
		if metrics != nil {
			metrics.RecordToolCall(ctx, tool, outcome)
		}
	}

	reqLogger := k.logger.With(zap.String("tool", name))
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		reqLogger = reqLogger.With(zap.String("request_id", requestID))
	}

	tool, ok := k.Lookup(name)
	if !ok {
		record(UnknownToolLabel, "unknown")
		reqLogger.Warn("Unknown tool requested")
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	tracer := k.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "tools."+name)
	defer span.End()

	start := time.Now()

	req, err := tool.decode(args)
	if err != nil {
		span.SetAttributes(attribute.Bool("valid", false))
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			record(name, "invalid")
			reqLogger.Warn("Invalid tool arguments", zap.Error(err))
		}
		return Result{}, err
	}
	span.SetAttributes(attribute.Bool("valid", true))

	value, err := invoke(ctx, tool, req)
	if err != nil {
		record(name, "fault")
		span.SetAttributes(attribute.String("outcome", OutcomeFault.String()))
		k.tele.RecordError(ctx, err, map[string]interface{}{"tool": name})
		reqLogger.Error("Tool call failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return fault(name, err), nil
	}

	record(name, "success")
	span.SetAttributes(attribute.String("outcome", OutcomeSuccess.String()))
	reqLogger.Info("Tool call completed", zap.Duration("duration", time.Since(start)))

	return success(name, value), nil
}

func invoke(ctx context.Context, tool *Tool, req any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return tool.invoke(ctx, req)
}
