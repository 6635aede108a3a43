package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/CCDD2022/mall-system/pkg/logger"

	vegeta "github.com/tsenart/vegeta/v12/lib"
)

// loginResponse matches the login envelope's relevant fields
type loginResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

// apiResp captures the envelope code for post-run analysis
type apiResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// 压测下单链路：每个虚拟用户交替 加购 -> 结算，
// 用于验证并发结算下库存条件扣减的正确性与吞吐
func main() {
	var (
		gateway   = flag.String("gateway", "http://localhost:8080", "API base URL")
		productID = flag.Int64("product", 1, "Product ID added to cart before checkout")
		quantity  = flag.Int("quantity", 1, "Cart quantity per attempt")
		users     = flag.Int("users", 50, "Number of virtual users (tokens) to prepare")
		rate      = flag.Int("rate", 100, "Requests per second")
		duration  = flag.String("duration", "30s", "Attack duration (e.g. 10s, 1m)")
		password  = flag.String("password", "password123", "Password used for all test users")
		register  = flag.Bool("register", false, "Register users before login (if they might not exist)")
		outJSON   = flag.String("out", "vegeta_results.json", "Summary JSON output file")
	)
	flag.Parse()

	attackDuration, err := time.ParseDuration(*duration)
	if err != nil {
		logger.Fatal("invalid duration", "err", err)
	}

	// Prepare users
	tokens := prepareTokens(*gateway, *users, *password, *register)
	if len(tokens) == 0 {
		logger.Fatal("no tokens prepared; aborting")
	}

	checkoutBody, _ := json.Marshal(map[string]any{
		"first_name":     "Load",
		"last_name":      "Test",
		"address_line1":  "1 Benchmark Road",
		"city":           "Shenzhen",
		"state":          "GD",
		"postal_code":    "518000",
		"country":        "CN",
		"payment_method": "mock",
	})
	cartBody, _ := json.Marshal(map[string]any{
		"product_id": *productID,
		"quantity":   *quantity,
	})

	// Custom targeter cycling through tokens; even calls add to cart, odd calls check out
	var counter uint64
	targeter := func(t *vegeta.Target) error {
		idx := atomic.AddUint64(&counter, 1) - 1
		token := tokens[(idx/2)%uint64(len(tokens))]
		t.Method = http.MethodPost
		t.Header = http.Header{}
		t.Header.Set("Content-Type", "application/json")
		t.Header.Set("Authorization", "Bearer "+token)
		if idx%2 == 0 {
			t.URL = fmt.Sprintf("%s/api/v1/cart", *gateway)
			t.Body = cartBody
		} else {
			t.URL = fmt.Sprintf("%s/api/v1/orders", *gateway)
			t.Body = checkoutBody
		}
		return nil
	}

	attacker := vegeta.NewAttacker()
	var metrics vegeta.Metrics
	successLogical := uint64(0)
	totalLogical := uint64(0)

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, attackDuration, "checkout_test") {
		metrics.Add(res)
		atomic.AddUint64(&totalLogical, 1)
		// Check envelope code
		var ar apiResp
		if err := json.Unmarshal(res.Body, &ar); err == nil {
			if ar.Code == 0 && res.Code < 400 {
				atomic.AddUint64(&successLogical, 1)
			}
		}
	}
	metrics.Close()

	total := totalLogical
	if total == 0 {
		total = 1
	}
	logicalSuccessRatio := float64(successLogical) / float64(total)

	summary := map[string]any{
		"attack": map[string]any{
			"rate_rps": *rate,
			"duration": attackDuration.String(),
			"users":    *users,
		},
		"vegeta_metrics": map[string]any{
			"requests":           metrics.Requests,
			"rate":               metrics.Rate,
			"throughput":         metrics.Throughput,
			"success_ratio_http": metrics.Success,
			"latency_mean_ms":    metrics.Latencies.Mean.Seconds() * 1000,
			"latency_p95_ms":     metrics.Latencies.P95.Seconds() * 1000,
			"latency_p99_ms":     metrics.Latencies.P99.Seconds() * 1000,
			"errors":             metrics.Errors,
		},
		"logical_success_ratio": logicalSuccessRatio,
		"logical_success":       successLogical,
		"logical_total":         totalLogical,
		"timestamp":             time.Now().Format(time.RFC3339),
	}

	data, _ := json.MarshalIndent(summary, "", "  ")
	if err := os.WriteFile(*outJSON, data, 0644); err != nil {
		logger.Warn("write summary failed", "err", err)
	}
	fmt.Println(string(data))
}

func prepareTokens(gateway string, users int, password string, doRegister bool) []string {
	tokens := make([]string, 0, users)
	client := &http.Client{Timeout: 5 * time.Second}
	for i := 0; i < users; i++ {
		uname := fmt.Sprintf("lt_user_%d", i)
		if doRegister {
			regBody := map[string]any{
				"username": uname,
				"password": password,
				"email":    fmt.Sprintf("%s@example.com", uname),
				"phone":    fmt.Sprintf("1380014%04d", i),
			}
			if err := postJSON(client, fmt.Sprintf("%s/api/v1/auth/register", gateway), regBody, nil); err != nil {
				logger.Warn("register failed", "username", uname, "err", err)
			}
		}
		var lr loginResponse
		loginBody := map[string]string{"username": uname, "password": password}
		err := postJSON(client, fmt.Sprintf("%s/api/v1/auth/login", gateway), loginBody, &lr)
		if err != nil || lr.Data.Token == "" {
			logger.Warn("login failed", "username", uname, "err", err)
			continue
		}
		tokens = append(tokens, lr.Data.Token)
	}
	return tokens
}

func postJSON(client *http.Client, url string, payload any, out any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d body %s", resp.StatusCode, string(body))
	}
	if out != nil {
		_ = json.Unmarshal(body, out)
	}
	return nil
}
