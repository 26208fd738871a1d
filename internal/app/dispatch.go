package app

import (
	"encoding/json"

	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/plugin"
)

// dispatchActions fires every enabled action bound to the gesture name.
// Plugin processes run on their own goroutines so a slow action never stalls
// the frame loop. Callers hold a.mu.
func (a *App) dispatchActions(gestureName string, side hand.Side) {
	if a.store == nil || !a.cfg.Plugins.Enabled {
		return
	}
	actions, err := a.store.Actions().ListByGesture(gestureName)
	if err != nil {
		a.log.Warn().Err(err).Str("gesture", gestureName).Msg("listing actions")
		return
	}
	for _, act := range actions {
		p, err := a.pluginMgr.Get(act.PluginName)
		if err != nil {
			a.log.Warn().
				Str("plugin", act.PluginName).
				Str("gesture", gestureName).
				Msg("bound plugin not installed")
			continue
		}
		req := &plugin.Request{
			Action:  act.ActionName,
			Gesture: gestureName,
			Hand:    string(side),
			Config:  act.Config,
		}
		go a.runAction(p, req)
	}
}

// runAction executes one plugin action and records the outcome.
func (a *App) runAction(p *plugin.Plugin, req *plugin.Request) {
	resp, err := a.pluginExec.Execute(p, req)
	if err != nil {
		a.log.Warn().Err(err).
			Str("plugin", p.Manifest.Name).
			Str("action", req.Action).
			Msg("plugin action failed")
		return
	}
	if !resp.Success {
		a.log.Warn().
			Str("plugin", p.Manifest.Name).
			Str("action", req.Action).
			Str("reason", resp.Error).
			Msg("plugin action rejected")
		return
	}
	a.log.Debug().
		Str("plugin", p.Manifest.Name).
		Str("action", req.Action).
		Msg("plugin action ran")
	a.appendEvent("action", req.Hand, req.Gesture+":"+req.Action, resp.Data)
}

// RunPluginAction executes a plugin action on demand, outside any gesture
// binding. Params are passed to the plugin verbatim. The call blocks until
// the plugin finishes or times out.
func (a *App) RunPluginAction(pluginName, action string, params json.RawMessage) (*plugin.Response, error) {
	p, err := a.pluginMgr.Get(pluginName)
	if err != nil {
		return nil, err
	}
	req := &plugin.Request{
		Action: action,
		Params: params,
	}
	resp, err := a.pluginExec.Execute(p, req)
	if err != nil {
		return nil, err
	}
	a.appendEvent("action", "", pluginName+":"+action, resp.Data)
	return resp, nil
}
