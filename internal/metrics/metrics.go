// Package metrics 业务指标（Prometheus）。
// 所有方法对 nil *Metrics 安全，测试中可直接传 nil。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "duty_bot"

// Metrics 业务计数器集合
type Metrics struct {
	events        *prometheus.CounterVec
	verdicts      *prometheus.CounterVec
	dutyLogs      prometheus.Counter
	notifications *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
}

// New 在 reg 上注册指标；reg 为 nil 时使用默认注册表
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "处理的聊天事件数，按类别",
		}, []string{"kind"}),
		verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_verdicts_total",
			Help:      "证据入口门判定结果",
		}, []string{"verdict"}),
		dutyLogs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duty_logs_committed_total",
			Help:      "成功写入的值班记录数",
		}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "推送通知数，按类型与结果",
		}, []string{"type", "status"}),
		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "定时任务执行次数",
		}, []string{"job", "result"}),
	}
}

func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) Verdict(v string) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(v).Inc()
}

func (m *Metrics) DutyLogCommitted() {
	if m == nil {
		return
	}
	m.dutyLogs.Inc()
}

func (m *Metrics) Notification(typ, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(typ, status).Inc()
}

// JobRun result: ok | skipped | error
func (m *Metrics) JobRun(job, result string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}
