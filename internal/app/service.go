package app

import (
	"time"

	"hub-versions/internal/ports"
)

// Service wires the hub catalog and report sink behind their ports.
// Hub and Sink are built from the request when left nil; tests inject
// fakes here.
type Service struct {
	Hub   ports.HubCatalogPort
	Sink  ports.ReportSinkPort
	Clock func() time.Time
}

func NewService() Service {
	return Service{Clock: time.Now}
}
