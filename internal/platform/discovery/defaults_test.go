package discovery

import (
	"reflect"
	"testing"
)

func TestDefaultGRPCAddr(t *testing.T) {
	if got := DefaultGRPCAddr(ServiceBooking); got != "booking:8082" {
		t.Fatalf("DefaultGRPCAddr(%q) = %q, want %q", ServiceBooking, got, "booking:8082")
	}
	if got := DefaultGRPCAddr("unknown"); got != "" {
		t.Fatalf("expected empty addr for unknown service, got %q", got)
	}
}

func TestDefaultHTTPAddr(t *testing.T) {
	cases := map[string]string{
		ServiceMonolith: "hotelio-monolith:8080",
		ServiceHistory:  "booking-history:8083",
	}
	for service, want := range cases {
		if got := DefaultHTTPAddr(service); got != want {
			t.Fatalf("DefaultHTTPAddr(%q) = %q, want %q", service, got, want)
		}
	}
}

func TestOrDefaultGRPCAddr(t *testing.T) {
	if got := OrDefaultGRPCAddr(" custom:9000 ", ServiceBooking); got != "custom:9000" {
		t.Fatalf("expected explicit grpc addr to win, got %q", got)
	}
	if got := OrDefaultGRPCAddr("", ServiceBooking); got != "booking:8082" {
		t.Fatalf("expected default grpc addr, got %q", got)
	}
}

func TestOrDefaultHTTPBaseURL(t *testing.T) {
	if got := OrDefaultHTTPBaseURL(" https://monolith.example.com/ ", ServiceMonolith); got != "https://monolith.example.com" {
		t.Fatalf("expected explicit base url to win, got %q", got)
	}
	if got := OrDefaultHTTPBaseURL("", ServiceMonolith); got != "http://hotelio-monolith:8080" {
		t.Fatalf("expected default monolith base url, got %q", got)
	}
}

func TestOrDefaultBrokerAddrs(t *testing.T) {
	got := OrDefaultBrokerAddrs([]string{" k1:9092 ", "", "k2:9092"}, ServiceKafka)
	if want := []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("broker addrs = %v, want %v", got, want)
	}
	got = OrDefaultBrokerAddrs(nil, ServiceKafka)
	if want := []string{"kafka:9092"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("broker addrs = %v, want %v", got, want)
	}
}
