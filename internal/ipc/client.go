package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"resty.dev/v3"
)

func newClient() *resty.Client {
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", SocketPath())
			},
		},
	})

	client.SetBaseURL("http://slidepaper")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "slidepaper")

	return client
}

// SendStatus asks the running daemon for its status.
func SendStatus() (*StatusResponse, error) {
	result := StatusResponse{}
	response, err := newClient().R().SetResult(&result).Get("/status")
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error getting status: %s", response.Status())
	}
	return &result, nil
}

// SendNext tells the daemon to advance every cell.
func SendNext() error {
	return post("/next", nil)
}

// SendStop tells the daemon to shut down.
func SendStop() error {
	return post("/stop", nil)
}

// SendLoad replaces the daemon's wallpaper list.
func SendLoad(wallpapers []string) error {
	return post("/load", wallpapers)
}

func post(path string, body any) error {
	req := newClient().R()
	if body != nil {
		req.SetBody(body)
	}
	response, err := req.Post(path)
	if err != nil {
		return err
	}
	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("error sending command: %s", response.Status())
	}
	return nil
}
