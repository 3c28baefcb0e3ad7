// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/viant/gmetric"
	"github.com/viant/gmetric/counter"
	gprovider "github.com/viant/gmetric/provider"
)

const metricLocation = "github.com/knt/web"

// Counter measures the invocations of one component.
type Counter interface {
	Begin(started time.Time) counter.OnDone
}

func componentMetricName(component string) string {
	return "component." + strings.ReplaceAll(component, "/", ".") + ".invoke"
}

// Counter returns the operation counter of component, creating it on first
// use.
func (s *Server) Counter(component string) Counter {
	name := componentMetricName(component)
	s.metricMux.Lock()
	defer s.metricMux.Unlock()
	cnt := s.Metrics.LookupOperation(name)
	if cnt == nil {
		cnt = s.Metrics.MultiOperationCounter(metricLocation, name, component+" invocation", time.Millisecond, time.Minute, 2, gprovider.NewBasic())
	}
	return cnt
}

func (s *Server) isMetricRequest(req *http.Request) bool {
	uri := s.Config.MetricURI
	return uri != "" && strings.HasPrefix(req.URL.Path, uri)
}

func (s *Server) serveMetrics(w http.ResponseWriter, req *http.Request) {
	gmetric.NewHandler(s.Config.MetricURI, s.Metrics).ServeHTTP(w, req)
}
