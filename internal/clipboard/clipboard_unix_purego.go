//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"image"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/example/inkwell/internal/diag"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if initErr = checkDisplay(); initErr != nil {
			return
		}
		owner, initErr = newSelectionOwner()
	})
	return initErr
}

// WriteImage encodes img as PNG and takes the CLIPBOARD selection. The
// drawing is served until another client claims the selection.
func WriteImage(img image.Image) error {
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.claim(payload{png: data})
}

// WriteText publishes UTF-8 text, typically a data URL.
func WriteText(text string) error {
	if text == "" {
		return ErrEmpty
	}
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.claim(payload{text: []byte(text)})
}

// selectionOwner holds CLIPBOARD from an unmapped window and answers
// conversion requests from other clients.
type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  map[string]xproto.Atom
	names  map[xproto.Atom]string

	mu   sync.Mutex
	data payload
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	o := &selectionOwner{
		conn:  conn,
		atoms: make(map[string]xproto.Atom),
		names: make(map[xproto.Atom]string),
	}
	if err := o.setup(); err != nil {
		conn.Close()
		return nil, err
	}
	go o.serve()
	return o, nil
}

func (o *selectionOwner) setup() error {
	screen := xproto.Setup(o.conn).DefaultScreen(o.conn)
	win, err := xproto.NewWindowId(o.conn)
	if err != nil {
		return fmt.Errorf("allocate window id: %w", err)
	}
	if err := xproto.CreateWindowChecked(o.conn, screen.RootDepth, win, screen.Root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual, 0, nil).Check(); err != nil {
		return fmt.Errorf("create selection window: %w", err)
	}
	o.window = win

	names := append([]string{"CLIPBOARD", targetsTarget}, textTargets...)
	names = append(names, imageTargets...)
	for _, name := range names {
		reply, err := xproto.InternAtom(o.conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return fmt.Errorf("intern %s: %w", name, err)
		}
		o.atoms[name] = reply.Atom
		o.names[reply.Atom] = name
	}
	return nil
}

func (o *selectionOwner) claim(p payload) error {
	o.mu.Lock()
	o.data = p
	o.mu.Unlock()
	err := xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms["CLIPBOARD"], xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("claim clipboard: %w", err)
	}
	return nil
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			diag.Logger().Debug("clipboard x11 error", "err", err)
			continue
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.data = payload{}
			o.mu.Unlock()
		}
	}
}

// answer writes the requested conversion to the requestor's property and
// reports the result with SelectionNotify. A refused conversion is
// signalled by a None property.
// TODO: use INCR transfers for payloads above the maximum request length.
func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	prop := e.Property
	if prop == xproto.AtomNone {
		prop = e.Target
	}
	o.mu.Lock()
	data := o.data
	o.mu.Unlock()

	target := o.names[e.Target]
	if target == targetsTarget {
		list := data.targets()
		buf := make([]byte, 4*len(list))
		for i, name := range list {
			xgb.Put32(buf[4*i:], uint32(o.atoms[name]))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, xproto.AtomAtom, 32, uint32(len(list)), buf)
	} else if b, ok := data.convert(target); ok {
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, e.Target, 8, uint32(len(b)), b)
	} else {
		diag.Logger().Debug("clipboard conversion refused", "target", target)
		prop = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  prop,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, xproto.EventMaskNoEvent, string(notify.Bytes()))
}
