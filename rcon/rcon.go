// Package rcon talks to CS2 game servers over the Source RCON protocol
// and knows the MatchZy/Get5 console command set.
package rcon

import (
	"fmt"
	"time"

	"github.com/gorcon/rcon"
	"github.com/skilloww/cs2panel/models"
)

const connectTimeout = 5 * time.Second

type Client struct {
	conn *rcon.Conn
}

// Dial opens an authenticated RCON connection to the server. Connection
// attempts time out after a few seconds; no retries are made here.
func Dial(server *models.Server) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", server.IP, server.Port)
	conn, err := rcon.Dial(addr, server.RconPassword,
		rcon.SetDialTimeout(connectTimeout),
		rcon.SetDeadline(connectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("rcon connect to %s failed: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Exec(command string) (string, error) {
	response, err := c.conn.Execute(command)
	if err != nil {
		return "", fmt.Errorf("rcon command %q failed: %w", command, err)
	}
	return response, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Exec dials, runs a single command and disconnects.
func Exec(server *models.Server, command string) (string, error) {
	client, err := Dial(server)
	if err != nil {
		return "", err
	}
	defer client.Close()
	return client.Exec(command)
}
