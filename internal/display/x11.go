//go:build linux || freebsd || openbsd || netbsd || dragonfly

package display

import (
	"fmt"
	"image"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/example/inkwell/internal/diag"
)

// ListMonitors retrieves the connected monitors using the X RandR extension.
func ListMonitors() ([]Monitor, error) {
	conn, root, err := connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	monitors, err := fetchMonitors(conn, root.Root)
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}

func connect() (*xgb.Conn, *xproto.ScreenInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, nil, fmt.Errorf("connect X server: %w", err)
	}
	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, nil, fmt.Errorf("xproto setup unavailable")
	}
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, nil, fmt.Errorf("xproto screen unavailable")
	}
	return conn, screen, nil
}

// probeDPI prefers Xft.dpi, then the primary RandR output, then the core
// screen dimensions.
func probeDPI() (float64, error) {
	conn, screen, err := connect()
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if dpi, ok := xftDPI(conn, screen.Root); ok {
		diag.Logger().Debug("display scale", "source", "Xft.dpi", "dpi", dpi)
		return dpi, nil
	}
	if monitors, err := fetchMonitors(conn, screen.Root); err == nil {
		if mon, err := FindMonitor(monitors, "primary"); err == nil && mon.DPI() > 0 {
			diag.Logger().Debug("display scale", "source", "randr", "monitor", mon.Name, "dpi", mon.DPI())
			return mon.DPI(), nil
		}
	} else {
		diag.Logger().Debug("randr unavailable", "err", err)
	}
	if screen.WidthInMillimeters == 0 {
		return 0, fmt.Errorf("screen reports no physical width")
	}
	dpi := float64(screen.WidthInPixels) / (float64(screen.WidthInMillimeters) / 25.4)
	diag.Logger().Debug("display scale", "source", "screen", "dpi", dpi)
	return dpi, nil
}

func xftDPI(conn *xgb.Conn, root xproto.Window) (float64, bool) {
	reply, err := xproto.GetProperty(conn, false, root, xproto.AtomResourceManager, xproto.AtomString, 0, 1<<16).Reply()
	if err != nil || reply.ValueLen == 0 {
		return 0, false
	}
	return parseXftDPI(string(reply.Value))
}

func fetchMonitors(conn *xgb.Conn, root xproto.Window) ([]Monitor, error) {
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("init randr: %w", err)
	}
	res, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("randr screen resources: %w", err)
	}
	primaryOutput := randr.Output(0)
	if primary, err := randr.GetOutputPrimary(conn, root).Reply(); err == nil {
		primaryOutput = primary.Output
	}
	monitors := make([]Monitor, 0, len(res.Outputs))
	for _, output := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, output, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(conn, info.Crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		monitors = append(monitors, Monitor{
			Index:    len(monitors),
			Name:     strings.TrimSpace(string(info.Name)),
			Rect:     image.Rect(int(crtc.X), int(crtc.Y), int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height)),
			WidthMM:  int(info.MmWidth),
			HeightMM: int(info.MmHeight),
			Primary:  output == primaryOutput,
		})
	}
	return monitors, nil
}
