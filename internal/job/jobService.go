package job

import (
	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/domain/jobModel"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	SessionStore      jobModel.SessionStore
	Registry          *config.Holder
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	SessionStore      jobModel.SessionStore
	Registry          *config.Holder
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		SessionStore:      cfg.SessionStore,
		Registry:          cfg.Registry,
	}
}

// HistoryWindow is how many stored turns the named flow reads. An unknown
// or disabled flow reads none; the executor reports that error itself.
func (s *Service) HistoryWindow(flowName string) int {
	if s.Registry == nil {
		return 0
	}
	reg := s.Registry.Current()
	if reg == nil {
		return 0
	}
	cfg, err := reg.Flow(flowName)
	if err != nil {
		return 0
	}
	return cfg.HistoryWindow
}

// FlowKind resolves the pipeline behind a configured flow key.
func (s *Service) FlowKind(flowName string) flowModel.Kind {
	if s.Registry == nil {
		return flowModel.KindUnsupported
	}
	reg := s.Registry.Current()
	if reg == nil {
		return flowModel.KindUnsupported
	}
	cfg, err := reg.Flow(flowName)
	if err != nil {
		return flowModel.KindUnsupported
	}
	return cfg.Kind
}
