package booking

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/hotelio/bookings/internal/platform/requestctx"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type userIDGetter interface {
	GetUserId() string
}

// LoggingInterceptor logs one line per unary call with its status code.
// The request user id is stored in the handler context.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		userID := ""
		if getter, ok := req.(userIDGetter); ok {
			userID = strings.TrimSpace(getter.GetUserId())
		}
		if userID != "" {
			ctx = requestctx.WithUserID(ctx, userID)
		}
		resp, err := handler(ctx, req)
		traceID := ""
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			traceID = sc.TraceID().String()
		}
		log.Printf("grpc %s user=%q code=%s duration=%s trace=%s",
			info.FullMethod, userID, status.Code(err), time.Since(started).Round(time.Microsecond), traceID)
		return resp, err
	}
}
