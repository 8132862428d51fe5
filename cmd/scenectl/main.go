// Package main provides the operator CLI entry point.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/mkaji/scenebox/internal/api/rest"
	"github.com/mkaji/scenebox/internal/app/notify"
	"github.com/mkaji/scenebox/internal/domain/scene"
)

var (
	app    = kingpin.New("scenectl", "scenebox operator client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Admin token (or set SCENEBOX_TOKEN env)").Envar("SCENEBOX_TOKEN").String()

	// status command
	statusCmd = app.Command("status", "Get rotation status")

	// scenes command
	scenesCmd = app.Command("scenes", "List loaded scenes").Alias("list")

	// show command
	showCmd      = app.Command("show", "Show a scene for a while, then return to rotation")
	showScene    = showCmd.Arg("scene", "Scene name").Required().String()
	showDuration = showCmd.Flag("duration", "How long to keep the scene up").Short('d').Default("1m").Duration()

	// pause command
	pauseCmd = app.Command("pause", "Pause autoplay rotation")

	// resume command
	resumeCmd   = app.Command("resume", "Resume autoplay rotation")
	resumeDelay = resumeCmd.Flag("delay", "Wait before the first rotation").Default("0s").Duration()

	// unload command
	unloadCmd = app.Command("unload", "Clear the currently placed scene")

	// watch command
	watchCmd = app.Command("watch", "Stream events until interrupted")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *token == "" {
		fmt.Println("Error: admin token is required (use --token or SCENEBOX_TOKEN env)")
		os.Exit(1)
	}

	client := &apiClient{
		base:  strings.TrimRight(*server, "/"),
		token: *token,
		http:  http.DefaultClient,
	}

	switch command {
	case statusCmd.FullCommand():
		status(client)
	case scenesCmd.FullCommand():
		listScenes(client)
	case showCmd.FullCommand():
		show(client, *showScene, *showDuration)
	case pauseCmd.FullCommand():
		pause(client)
	case resumeCmd.FullCommand():
		resume(client, *resumeDelay)
	case unloadCmd.FullCommand():
		unload(client)
	case watchCmd.FullCommand():
		watch(client)
	}
}

// apiClient is a thin JSON client for the operator API.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func (c *apiClient) do(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set(rest.AdminTokenHeader, c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s (%s)", envelope.Error.Message, envelope.Error.Code)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type statusResponse struct {
	Rotation       string     `json:"rotation"`
	CurrentScene   string     `json:"current_scene"`
	Loading        bool       `json:"loading"`
	OverrideActive bool       `json:"override_active"`
	OverrideScene  string     `json:"override_scene"`
	Cursor         int        `json:"cursor"`
	Playlist       []string   `json:"playlist"`
	LastFiredAt    *time.Time `json:"last_fired_at"`
	IntervalSecs   int        `json:"interval_secs"`
	SceneCount     int        `json:"scene_count"`
	Subscribers    int        `json:"subscribers"`
}

type sceneInfo struct {
	Name   string       `json:"name"`
	Items  int          `json:"items"`
	Bytes  int          `json:"bytes"`
	Bounds scene.Region `json:"bounds"`
}

func status(c *apiClient) {
	var s statusResponse
	if err := c.do(http.MethodGet, "/api/v1/status", nil, &s); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n=== SCENE ROTATION STATUS ===")
	fmt.Printf("Rotation: %s\n", s.Rotation)
	if s.CurrentScene != "" {
		fmt.Printf("Current Scene: %s\n", s.CurrentScene)
	} else {
		fmt.Println("Current Scene: (none)")
	}
	if s.Loading {
		fmt.Println("A scene placement is in flight")
	}
	if s.OverrideActive {
		fmt.Printf("Override Active: %s\n", s.OverrideScene)
	}
	fmt.Printf("Interval: %ds\n", s.IntervalSecs)
	fmt.Printf("Playlist (%d): %s\n", len(s.Playlist), strings.Join(s.Playlist, ", "))
	fmt.Printf("Cursor: %d\n", s.Cursor)
	if s.LastFiredAt != nil {
		fmt.Printf("Last Rotation: %s\n", s.LastFiredAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("Scenes Loaded: %d\n", s.SceneCount)
	fmt.Printf("Event Subscribers: %d\n", s.Subscribers)
	fmt.Println()
}

func listScenes(c *apiClient) {
	var resp struct {
		Scenes []sceneInfo `json:"scenes"`
	}
	if err := c.do(http.MethodGet, "/api/v1/scenes", nil, &resp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scenes (%d):\n", len(resp.Scenes))
	for _, s := range resp.Scenes {
		fmt.Printf("  %-24s %5d items  %8d bytes  %s\n", s.Name, s.Items, s.Bytes, s.Bounds.String())
	}
}

func show(c *apiClient, name string, duration time.Duration) {
	body := map[string]any{
		"scene":         name,
		"duration_secs": int(duration / time.Second),
	}
	var resp map[string]any
	if err := c.do(http.MethodPost, "/api/v1/override", body, &resp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Showing %s for %s, rotation resumes afterwards\n", name, duration)
}

func pause(c *apiClient) {
	var resp map[string]string
	if err := c.do(http.MethodPost, "/api/v1/autoplay/pause", nil, &resp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rotation: %s\n", resp["rotation"])
}

func resume(c *apiClient, delay time.Duration) {
	body := map[string]any{
		"delay_secs": int(delay / time.Second),
	}
	var resp map[string]string
	if err := c.do(http.MethodPost, "/api/v1/autoplay/resume", body, &resp); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rotation: %s\n", resp["rotation"])
}

func unload(c *apiClient) {
	if err := c.do(http.MethodPost, "/api/v1/unload", nil, nil); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Scene unloaded")
}

func watch(c *apiClient) {
	wsURL := strings.Replace(c.base, "http", "ws", 1) + "/api/v1/events"
	header := http.Header{}
	header.Set(rest.AdminTokenHeader, c.token)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Watching events (Ctrl+C to stop)...")
	for {
		var e notify.Event
		if err := conn.ReadJSON(&e); err != nil {
			fmt.Printf("Connection closed: %v\n", err)
			return
		}

		ts := e.At.Local().Format("15:04:05")
		if e.Scene != "" {
			fmt.Printf("[%s] #%d %s: %s\n", ts, e.SequenceNo, e.Type, e.Scene)
		} else {
			fmt.Printf("[%s] #%d %s\n", ts, e.SequenceNo, e.Type)
		}
	}
}
