// Manual smoke client: logs in and lists the caller's resources
// against a running server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

func main() {
	client := http.Client{}
	baseurl := "http://127.0.0.1:7340/api/v1"

	login := map[string]string{
		"email":    os.Getenv("RESAPI_EMAIL"),
		"password": os.Getenv("RESAPI_PASSWORD"),
	}
	body, _ := json.Marshal(login)
	req, err := http.NewRequestWithContext(context.Background(), "POST", baseurl+"/login", bytes.NewReader(body))
	if err != nil {
		fmt.Println("can't create request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		fmt.Println("err:", err)
		return
	}
	var tokens struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		fmt.Println("err:", err)
		return
	}
	resp.Body.Close()

	req, err = http.NewRequestWithContext(context.Background(), "GET", baseurl+"/resources", http.NoBody)
	if err != nil {
		fmt.Println("can't create request")
		return
	}
	req.Header.Set("Authorization", "Bearer "+tokens.Access)
	req.Header.Set("accept", "application/json")
	resp, err = client.Do(req)
	if err != nil {
		fmt.Println("err:", err)
		return
	}
	out, _ := io.ReadAll(resp.Body)
	fmt.Println(string(out))
	resp.Body.Close()
}
