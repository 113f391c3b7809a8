package builder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
)

// unsafeGlobals are removed from the base library after it is opened.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"}

// openSandbox opens the libraries scripts may use.
func openSandbox(l *lua.State) {
	libs := []lua.RegistryFunction{
		{Name: "_G", Function: lua.BaseOpen},
		{Name: "string", Function: lua.StringOpen},
		{Name: "table", Function: lua.TableOpen},
		{Name: "math", Function: lua.MathOpen},
		{Name: "bit32", Function: lua.Bit32Open},
	}
	for _, lib := range libs {
		lua.Require(l, lib.Name, lib.Function, true)
		l.Pop(1)
	}

	for _, name := range unsafeGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}
}

// registerGlobals installs the app and dashgate tables.
func (a *App) registerGlobals(l *lua.State) {
	util.DeepPush(l, map[string]interface{}{
		"title":  a.def.Title,
		"layout": a.def.Layout,
		"prefix": a.server.PathPrefix,
		"tenant": a.server.TenantID,
	})
	l.SetGlobal("app")

	lua.NewLibrary(l, a.library())
	l.SetGlobal("dashgate")
}

func (a *App) library() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		// log writes a message to the server log.
		//
		// @param message string
		// @param level string debug, info, warn or error. Default: info
		{Name: "log", Function: func(l *lua.State) int {
			msg := lua.CheckString(l, 1)
			level := lua.OptString(l, 2, "info")

			var lvl slog.Level
			switch strings.ToLower(level) {
			case "debug":
				lvl = slog.LevelDebug
			case "warn", "warning":
				lvl = slog.LevelWarn
			case "error":
				lvl = slog.LevelError
			default:
				lvl = slog.LevelInfo
			}
			a.logger.Log(context.Background(), lvl, msg, "source", "script")
			return 0
		}},
	}
}
