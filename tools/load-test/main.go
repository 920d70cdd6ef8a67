package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Creates a batch of employees, then records an arrival and a departure for
// each of them, hammering the recording path concurrently.
func main() {
	baseURL := "http://localhost:8080/api/v1"
	contentType := "application/json"

	numEmployees := 1000
	concurrency := 50 // Number of concurrent requests to avoid local port exhaustion

	fmt.Printf("Starting load test: %d employees (arrival + departure each) against %s with concurrency %d\n",
		numEmployees, baseURL, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // Semaphore to limit concurrency

	var successCount int64
	var failCount int64

	startTime := time.Now()

	for i := 0; i < numEmployees; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire token

		n := i
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // Release token

			employeeID, err := createEmployee(baseURL, contentType, n)
			if err != nil {
				atomic.AddInt64(&failCount, 1)
				return
			}

			for _, eventType := range []string{"arrival", "departure"} {
				payload := []byte(fmt.Sprintf(`{"type": %q, "employeeId": %q}`, eventType, employeeID))
				resp, err := http.Post(baseURL+"/attendance", contentType, bytes.NewBuffer(payload))
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}
				if resp.StatusCode == http.StatusCreated {
					atomic.AddInt64(&successCount, 1)
				} else {
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}()
	}

	wg.Wait()
	duration := time.Since(startTime)
	totalRequests := numEmployees * 2

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}

func createEmployee(baseURL, contentType string, n int) (string, error) {
	payload := []byte(fmt.Sprintf(`{
		"firstName": "Load",
		"lastName": "Tester %d",
		"email": "load-test-%d@example.com",
		"employeeIdentifier": "LT-%06d",
		"phoneNumber": "+40000000000"
	}`, n, n, n))

	resp, err := http.Post(baseURL+"/employees", contentType, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create employee returned status %d", resp.StatusCode)
	}

	var employee struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&employee); err != nil {
		return "", err
	}
	return employee.ID, nil
}
