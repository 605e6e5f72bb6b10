package dispatch

import (
	"fmt"
	"sort"

	"filephile/internal/domain"
	"filephile/internal/input/action"
	"filephile/internal/nav"
)

// Level is the severity of a notice
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Notice is a transient, non-blocking message for the status line
type Notice struct {
	Level Level
	Text  string
	Err   error
}

func info(format string, args ...interface{}) Notice {
	return Notice{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

// View is everything the renderer needs for one frame
type View struct {
	Nav         nav.Snapshot
	Mode        action.Mode
	PendingKeys string
	Count       int
	AwaitingArg string // action waiting for its argument key
	Prompt      string // confirm or conflict question
	Notice      Notice
	Operations  []domain.OperationProgress
	Register    int
	RegisterCut bool
	CanUndo     bool
}

// View returns a render-ready snapshot
func (e *Engine) View() View {
	keys, count := e.table.Pending()
	v := View{
		Nav:         e.nav.Snapshot(),
		Mode:        e.mode,
		PendingKeys: keys.String(),
		Count:       count,
		Notice:      e.notice,
		Register:    len(e.register.paths),
		RegisterCut: e.register.cut,
		CanUndo:     e.undoable != nil,
	}
	if e.awaitArg.Kind != action.None {
		v.AwaitingArg = e.awaitArg.Kind.String()
	}
	switch {
	case e.confirming != nil:
		v.Prompt = e.confirming.prompt
	case len(e.prompts) > 0:
		v.Prompt = conflictPrompt(e.prompts[0])
	}
	for id := range e.running {
		p := e.progress[id]
		if p.ID == "" {
			p = domain.OperationProgress{ID: id, Kind: e.running[id].Kind, Total: len(e.running[id].Items)}
		}
		v.Operations = append(v.Operations, p)
	}
	sort.Slice(v.Operations, func(i, j int) bool {
		return e.started[v.Operations[i].ID] < e.started[v.Operations[j].ID]
	})
	return v
}
