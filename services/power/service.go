// Package power puts the regulator registry on the bus: control requests
// in, periodic state snapshots out.
//
// Topics:
//
//	power/<name>/control/{value,mode,enable}  request, payload types.Regulator{Value,Mode,Enable}
//	power/<name>/reply/<verb>                 types.ControlReply
//	power/<name>/state                        retained types.RegulatorState, on change
//	config/power                              {"interval": seconds} or types.PowerConfig; 0 stops polling
package power

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"pmic-go/bus"
	"pmic-go/errcode"
	"pmic-go/internal/dm"
	"pmic-go/types"
)

const (
	tokPower   = "power"
	tokControl = "control"
	tokReply   = "reply"
	tokState   = "state"

	verbValue  = "value"
	verbMode   = "mode"
	verbEnable = "enable"

	DefaultInterval = 5 * time.Second
)

var (
	topicConfigPower = bus.T("config", tokPower)
	topicCtrl        = bus.T(tokPower, "+", tokControl, "+")
)

func stateTopic(name string) bus.Topic { return bus.T(tokPower, name, tokState) }
func replyTopic(name, verb string) bus.Topic {
	return bus.T(tokPower, name, tokReply, verb)
}

type Service struct {
	conn     *bus.Connection
	reg      *dm.Registry
	log      logr.Logger
	interval time.Duration
	last     map[string]types.RegulatorState
}

func New(conn *bus.Connection, reg *dm.Registry, log logr.Logger) *Service {
	return &Service{
		conn:     conn,
		reg:      reg,
		log:      log,
		interval: DefaultInterval,
		last:     map[string]types.RegulatorState{},
	}
}

// Start subscribes, publishes a first snapshot and runs the service loop
// until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigPower)
	ctrlSub := s.conn.Subscribe(topicCtrl)
	s.poll()
	go s.serviceLoop(ctx, cfgSub, ctrlSub)
}

func (s *Service) serviceLoop(ctx context.Context, cfgSub, ctrlSub *bus.Subscription) {
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.V(1).Info("power service stopping")
			return
		case <-tick.C:
			s.poll()
		case msg := <-cfgSub.Channel():
			s.applyConfig(msg, tick)
		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)
		}
	}
}

func (s *Service) applyConfig(msg *bus.Message, tick *time.Ticker) {
	iv, ok := interval(msg.Payload)
	if !ok {
		s.log.Info("ignoring power config", "payload", fmt.Sprintf("%T", msg.Payload))
		return
	}
	if iv <= 0 {
		tick.Stop()
		s.log.Info("power polling stopped")
		return
	}
	s.interval = time.Duration(iv * float64(time.Second))
	tick.Reset(s.interval)
	s.log.Info("power polling interval set", "interval", s.interval.String())
}

// interval reads seconds from a decoded JSON object or a types.PowerConfig.
func interval(payload any) (float64, bool) {
	switch p := payload.(type) {
	case types.PowerConfig:
		return p.Interval, true
	case *types.PowerConfig:
		if p == nil {
			return 0, false
		}
		return p.Interval, true
	case map[string]any:
		iv, ok := p["interval"].(float64)
		return iv, ok
	default:
		return 0, false
	}
}

// as asserts a payload to T. Pointers are not accepted.
func as[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, errcode.New(errcode.InvalidParams, "power", "unexpected payload type")
	}
	return t, nil
}

func (s *Service) handleControl(msg *bus.Message) {
	if len(msg.Topic) != 4 {
		return
	}
	name, verb := msg.Topic[1], msg.Topic[3]
	err := s.control(name, verb, msg.Payload)
	reply := types.ControlReply{OK: err == nil}
	if err != nil {
		reply.Error = string(errcode.Of(err))
		s.log.V(1).Info("control rejected", "regulator", name, "verb", verb, "err", err.Error())
	}
	s.conn.Publish(&bus.Message{Topic: replyTopic(name, verb), Payload: reply})
	if err == nil {
		s.pollOne(name)
	}
}

func (s *Service) control(name, verb string, payload any) error {
	h, err := s.reg.Lookup(name)
	if err != nil {
		return err
	}
	switch verb {
	case verbValue:
		v, err := as[types.RegulatorValue](payload)
		if err != nil {
			return err
		}
		return s.reg.SetValue(h, v.MicroV, v.Force)
	case verbMode:
		v, err := as[types.RegulatorMode](payload)
		if err != nil {
			return err
		}
		return s.reg.SetMode(h, v.Mode)
	case verbEnable:
		v, err := as[types.RegulatorEnable](payload)
		if err != nil {
			return err
		}
		return s.reg.SetEnable(h, v.On)
	default:
		return errcode.New(errcode.InvalidParams, "power", "unknown verb "+verb)
	}
}

// poll snapshots every probed regulator and publishes the ones that changed.
func (s *Service) poll() {
	for _, h := range s.reg.List(types.CategoryRegulator) {
		s.snapshot(h)
	}
}

func (s *Service) pollOne(name string) {
	if h, err := s.reg.Lookup(name); err == nil {
		s.snapshot(h)
	}
}

func (s *Service) snapshot(h dm.Handle) {
	in, err := s.reg.Info(h)
	if err != nil || in.State != types.StateProbed {
		return
	}
	st, err := s.read(h)
	if err != nil {
		s.log.V(1).Info("state read failed", "regulator", in.Name, "err", err.Error())
		return
	}
	if prev, ok := s.last[in.Name]; ok && prev == st {
		return
	}
	s.last[in.Name] = st
	s.conn.Publish(&bus.Message{Topic: stateTopic(in.Name), Payload: st, Retained: true})
}

func (s *Service) read(h dm.Handle) (types.RegulatorState, error) {
	uV, err := s.reg.GetValue(h)
	if err != nil {
		if errcode.Of(err) != errcode.UnsupportedFeature {
			return types.RegulatorState{}, err
		}
		uV = types.Unset
	}
	on, err := s.reg.GetEnable(h)
	if err != nil {
		return types.RegulatorState{}, err
	}
	mode, err := s.reg.GetMode(h)
	if err != nil {
		if errcode.Of(err) != errcode.UnsupportedFeature {
			return types.RegulatorState{}, err
		}
		mode = -1
	}
	return types.RegulatorState{MicroV: uV, Mode: mode, On: on}, nil
}
