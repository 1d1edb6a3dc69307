// Package discovery centralizes internal service-discovery conventions.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceBooking is the booking orchestrator gRPC service identity.
	ServiceBooking = "booking"
	// ServiceHistory is the booking history HTTP service identity.
	ServiceHistory = "booking-history"
	// ServiceMonolith is the legacy monolith hosting the fact providers.
	ServiceMonolith = "hotelio-monolith"
	// ServiceKafka is the fact log broker identity.
	ServiceKafka = "kafka"
	// ServiceRabbitMQ is the alternate AMQP broker identity.
	ServiceRabbitMQ = "rabbitmq"
)

var grpcPorts = map[string]int{
	ServiceBooking: 8082,
}

var httpPorts = map[string]int{
	ServiceMonolith: 8080,
	ServiceHistory:  8083,
}

var brokerPorts = map[string]int{
	ServiceKafka:    9092,
	ServiceRabbitMQ: 5672,
}

// DefaultGRPCAddr returns the canonical in-network gRPC address for a service.
func DefaultGRPCAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), grpcPorts)
}

// DefaultHTTPAddr returns the canonical in-network HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), httpPorts)
}

// DefaultBrokerAddr returns the canonical in-network broker address.
func DefaultBrokerAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), brokerPorts)
}

// OrDefaultGRPCAddr returns value when set, otherwise the service convention.
func OrDefaultGRPCAddr(value, service string) string {
	return orDefault(value, DefaultGRPCAddr(service))
}

// OrDefaultHTTPAddr returns value when set, otherwise the service convention.
func OrDefaultHTTPAddr(value, service string) string {
	return orDefault(value, DefaultHTTPAddr(service))
}

// OrDefaultHTTPBaseURL returns value when set, otherwise http://<service-host:port>.
func OrDefaultHTTPBaseURL(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return strings.TrimRight(value, "/")
	}
	addr := DefaultHTTPAddr(service)
	if addr == "" {
		return ""
	}
	return "http://" + addr
}

// OrDefaultBrokerAddrs returns the non-empty entries of values, or the
// single broker convention address when none remain.
func OrDefaultBrokerAddrs(values []string, service string) []string {
	addrs := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			addrs = append(addrs, v)
		}
	}
	if len(addrs) == 0 {
		if addr := DefaultBrokerAddr(service); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return fallback
}

func defaultAddr(service string, ports map[string]int) string {
	port, ok := ports[service]
	if !ok || port <= 0 {
		return ""
	}
	return service + ":" + strconv.Itoa(port)
}
