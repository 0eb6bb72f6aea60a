package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"
)

// stkCallback is the push gateway's asynchronous result envelope
type stkCallback struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  *struct {
				Item []metadataItem `json:"Item"`
			} `json:"CallbackMetadata,omitempty"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type metadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value,omitempty"`
}

type statusResponse struct {
	CorrelationID string `json:"correlationId"`
	Status        string `json:"status"`
	ReceiptRef    string `json:"receiptRef"`
}

// TestResult contains metrics for a single callback delivery
type TestResult struct {
	Scenario     string
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated storm statistics
type TestStats struct {
	TotalRequests int
	TotalTime     time.Duration
	ResponseTimes []time.Duration
	StatusCounts  map[int]int
	ScenarioStats map[string]int
	ErrorCounts   map[string]int
	Lock          sync.Mutex
}

// CallbackScenario defines one kind of delivery
type CallbackScenario struct {
	Name       string
	ResultCode int
	ResultDesc string
}

func main() {
	concurrency := flag.Int("c", 20, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 200, "Total number of callbacks to deliver")
	correlationID := flag.String("id", "", "CheckoutRequestID of a PENDING attempt")
	userID := flag.Uint64("user", 1, "Owner of the attempt, used for the final status poll")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	conflicting := flag.Float64("conflict", 0.2, "Share of callbacks that report a cancellation instead of success")
	delayMs := flag.Int("delay", 0, "Delay between requests in milliseconds")
	flag.Parse()

	if *correlationID == "" {
		fmt.Println("-id is required: start a checkout first and pass its correlationId")
		return
	}

	success := CallbackScenario{"Success", 0, "The service request is processed successfully."}
	cancelled := CallbackScenario{"Cancelled", 1032, "Request cancelled by user"}

	fmt.Printf("Delivering %d callbacks for %s with %d goroutines\n", *totalRequests, *correlationID, *concurrency)
	fmt.Printf("Conflicting share: %.0f%%\n", *conflicting*100)

	stats := &TestStats{
		TotalRequests: *totalRequests,
		ResponseTimes: make([]time.Duration, 0, *totalRequests),
		StatusCounts:  make(map[int]int),
		ScenarioStats: make(map[string]int),
		ErrorCounts:   make(map[string]int),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(*baseURL, *correlationID, *delayMs, *conflicting, success, cancelled, jobs, results)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	var collected sync.WaitGroup
	collected.Add(1)
	go func() {
		defer collected.Done()
		for result := range results {
			stats.Lock.Lock()
			stats.ScenarioStats[result.Scenario]++
			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			if result.Error != nil {
				stats.ErrorCounts[result.Error.Error()]++
			} else {
				stats.StatusCounts[result.StatusCode]++
			}
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	wg.Wait()
	close(results)
	collected.Wait()
	stats.TotalTime = time.Since(startTime)

	printResults(stats)
	printFinalStatus(*baseURL, *correlationID, *userID)
}

func worker(baseURL, correlationID string, delayMs int, conflicting float64,
	success, cancelled CallbackScenario, jobs <-chan int, results chan<- TestResult) {

	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	url := baseURL + "/payments/mpesa/callback"

	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		scenario := success
		if rand.Float64() < conflicting {
			scenario = cancelled
		}

		payload, err := json.Marshal(buildCallback(correlationID, scenario))
		if err != nil {
			results <- TestResult{Scenario: scenario.Name, Error: err}
			continue
		}

		startTime := time.Now()
		resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
		result := TestResult{Scenario: scenario.Name, ResponseTime: time.Since(startTime), Error: err}
		if err == nil {
			result.StatusCode = resp.StatusCode
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		results <- result
	}
}

func buildCallback(correlationID string, scenario CallbackScenario) stkCallback {
	var cb stkCallback
	cb.Body.StkCallback.MerchantRequestID = "storm-" + correlationID
	cb.Body.StkCallback.CheckoutRequestID = correlationID
	cb.Body.StkCallback.ResultCode = scenario.ResultCode
	cb.Body.StkCallback.ResultDesc = scenario.ResultDesc

	if scenario.ResultCode == 0 {
		cb.Body.StkCallback.CallbackMetadata = &struct {
			Item []metadataItem `json:"Item"`
		}{Item: []metadataItem{
			{Name: "MpesaReceiptNumber", Value: "STORM" + time.Now().Format("150405")},
			{Name: "TransactionDate", Value: time.Now().Format("20060102150405")},
		}}
	}
	return cb
}

func printResults(stats *TestStats) {
	var p50, p95, p99, maxTime time.Duration
	if n := len(stats.ResponseTimes); n > 0 {
		sorted := make([]time.Duration, n)
		copy(sorted, stats.ResponseTimes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		p50 = sorted[n*50/100]
		p95 = sorted[n*95/100]
		p99 = sorted[n*99/100]
		maxTime = sorted[n-1]
	}

	fmt.Println("\n================= STORM RESULTS =================")
	fmt.Printf("Total Callbacks:     %d\n", stats.TotalRequests)
	fmt.Printf("Total Time:          %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f callbacks/s\n", float64(stats.TotalRequests)/stats.TotalTime.Seconds())

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)
	fmt.Printf("Maximum Response:    %v\n", maxTime)

	fmt.Println("\n----------------- HTTP STATUS -----------------")
	for code, count := range stats.StatusCounts {
		fmt.Printf("%d: %d\n", code, count)
	}

	fmt.Println("\n----------------- SCENARIOS -----------------")
	for name, count := range stats.ScenarioStats {
		fmt.Printf("%-10s: %d\n", name, count)
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- TRANSPORT ERRORS -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d\n", errMsg, count)
		}
	}
}

// printFinalStatus shows which delivery won; every callback must have been acknowledged
// and the attempt must sit in exactly one terminal status
func printFinalStatus(baseURL, correlationID string, userID uint64) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/payments/%s/status", baseURL, correlationID), nil)
	if err != nil {
		fmt.Println("Status poll failed:", err)
		return
	}
	req.Header.Set("X-User-ID", fmt.Sprint(userID))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("Status poll failed:", err)
		return
	}
	defer resp.Body.Close()

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Println("Status poll returned an unreadable body:", err)
		return
	}

	fmt.Println("\n================= FINAL STATE =================")
	fmt.Printf("Attempt:  %s\n", correlationID)
	fmt.Printf("Status:   %s\n", status.Status)
	if status.ReceiptRef != "" {
		fmt.Printf("Receipt:  %s\n", status.ReceiptRef)
	}
	fmt.Println("================================================")
}
