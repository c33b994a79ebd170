// Command seeder posts a sample match to a running server and prints the
// ranked predictions. With -train it first asks the server to retrain.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// matchStats mirrors the predict request body.
type matchStats struct {
	HomeGoals         int `json:"home_goals"`
	HomeShots         int `json:"home_shots"`
	HomeShotsOnTarget int `json:"home_shots_on_target"`
	HomeRedCards      int `json:"home_red_cards"`
	AwayGoals         int `json:"away_goals"`
	AwayShots         int `json:"away_shots"`
	AwayShotsOnTarget int `json:"away_shots_on_target"`
	AwayRedCards      int `json:"away_red_cards"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	token := flag.String("token", "", "admin token, required with -train")
	train := flag.Bool("train", false, "retrain before predicting")
	flag.Parse()

	client := &http.Client{Timeout: 60 * time.Second}

	if *train {
		req, err := http.NewRequest(http.MethodPost, *baseURL+"/api/train", nil)
		if err != nil {
			log.Fatalf("Failed to create request: %v", err)
		}
		req.Header.Set("X-Admin-Token", *token)
		send(client, req)
	}

	payload, err := json.Marshal(matchStats{
		HomeGoals: 2, AwayGoals: 1,
		HomeShots: 15, AwayShots: 10,
		HomeShotsOnTarget: 8, AwayShotsOnTarget: 5,
	})
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *baseURL+"/api/predict", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	send(client, req)
}

func send(client *http.Client, req *http.Request) {
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s %s: %s\n", req.Method, req.URL.Path, resp.Status)

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(body))
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Request failed")
	}
}
