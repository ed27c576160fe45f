// Dev utility: joins eight identities against a locally running server so a
// game auto-starts, then prints the room state. Usage:
//
//	IDENTITY_SECRET=dev-secret go run scripts/fill-room.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const apiBase = "http://localhost:8080/api/mafia"

type joinResponse struct {
	RoomID       string `json:"roomId"`
	PlayerID     string `json:"playerId"`
	PlayersCount int    `json:"playersCount"`
	Started      bool   `json:"started"`
}

func main() {
	secret := os.Getenv("IDENTITY_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "IDENTITY_SECRET is required")
		os.Exit(1)
	}

	var roomID string
	for i := 1; i <= 8; i++ {
		name := fmt.Sprintf("Tester %d", i)
		token, err := signToken(secret, fmt.Sprintf("dev-tester-%d", i), name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
			os.Exit(1)
		}

		res, err := join(token, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "join failed for %s: %v\n", name, err)
			os.Exit(1)
		}
		roomID = res.RoomID
		fmt.Printf("%s seated in room %s (%d/8)\n", name, res.RoomID, res.PlayersCount)
		if res.Started {
			fmt.Println("game started")
		}
	}

	token, err := signToken(secret, "dev-tester-1", "Tester 1")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	state, err := get(token, "/state/"+roomID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch state: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(state)
}

func signToken(secret, sub, name string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"name": name,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func join(token, name string) (*joinResponse, error) {
	body, _ := json.Marshal(map[string]string{"name": name})
	req, err := http.NewRequest(http.MethodPost, apiBase+"/join", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, data)
	}

	var res joinResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func get(token, path string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, apiBase+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
