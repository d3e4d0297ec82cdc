package mpd

import (
	"github.com/rmpd-project/rmpd/internal/core"
)

func handleOutputs(d *Dispatcher, cs *connState, args []string) (string, error) {
	rb := NewResponseBuilder()
	for _, o := range d.Outputs.List() {
		rb.Field("outputid", o.ID)
		rb.Field("outputname", o.Name)
		rb.Field("plugin", o.Plugin)
		rb.Field("outputenabled", boolToBit(o.Enabled))
		for k, v := range o.Attrs {
			rb.Field("attribute", k+"="+v)
		}
	}
	return rb.String(), nil
}

func handleEnableOutput(d *Dispatcher, cs *connState, args []string) (string, error) {
	id, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	if !d.Outputs.Enable(id) {
		return "", NewAckError(AckNoExist, "no such output")
	}
	d.Bus.Emit(core.Event{Kind: core.EventOutputsChanged})
	return "", nil
}

func handleDisableOutput(d *Dispatcher, cs *connState, args []string) (string, error) {
	id, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	if !d.Outputs.Disable(id) {
		return "", NewAckError(AckNoExist, "no such output")
	}
	d.Bus.Emit(core.Event{Kind: core.EventOutputsChanged})
	return "", nil
}

func handleToggleOutput(d *Dispatcher, cs *connState, args []string) (string, error) {
	id, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	if !d.Outputs.Toggle(id) {
		return "", NewAckError(AckNoExist, "no such output")
	}
	d.Bus.Emit(core.Event{Kind: core.EventOutputsChanged})
	return "", nil
}

func handleOutputSet(d *Dispatcher, cs *connState, args []string) (string, error) {
	id, err := parseUint32(args[0])
	if err != nil {
		return "", err
	}
	if !d.Outputs.SetAttribute(id, args[1], args[2]) {
		return "", NewAckError(AckNoExist, "no such output")
	}
	d.Bus.Emit(core.Event{Kind: core.EventOutputsChanged})
	return "", nil
}
