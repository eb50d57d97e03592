package views

// endCallView итог завершенного вызова. Через EndCallDelay сообщает
// приложению, что экран отработал.
type endCallView struct {
	base
	summary *CallSummary
	finish  Timer
}

func (v *endCallView) Create() error {
	v.render = v.build
	v.visible = !v.host.IsPaused()

	if rec := v.host.State().LastEndedCallData(); rec != nil {
		sum := summarize(rec, rec.Category)
		if !rec.Dialing {
			sum.Duration = formatElapsed(v.opts.Uptime.Uptime() - rec.StartTime)
		}
		v.summary = &sum
	}
	v.finish = v.opts.Scheduler.AfterFunc(v.opts.EndCallDelay, v.finished)
	v.publish()
	return nil
}

func (v *endCallView) Update() error {
	v.publish()
	return nil
}

func (v *endCallView) Destroy() error {
	v.stopFinish()
	v.closed()
	return nil
}

func (v *endCallView) stopFinish() {
	t := v.finish
	v.finish = nil
	if t != nil {
		t.Stop()
	}
}

func (v *endCallView) finished() {
	if v.finish == nil {
		return
	}
	v.finish = nil
	v.host.FinishEndCall()
}

func (v *endCallView) build() Screen {
	s := v.screen()
	if v.summary != nil {
		s.Calls = []CallSummary{*v.summary}
	}
	return s
}

func (v *endCallView) OnShow() {
	v.visible = true
	v.publish()
}

func (v *endCallView) OnHide() {
	v.visible = false
	v.publish()
}
