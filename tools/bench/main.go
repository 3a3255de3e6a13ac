package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// -------------------- 统计 --------------------

type Stats struct {
	mu        sync.Mutex
	latencies []time.Duration
	success   int
	failed    int
	counted   int
}

func (s *Stats) Add(ok, counted bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.failed++
		return
	}
	s.success++
	if counted {
		s.counted++
	}
	s.latencies = append(s.latencies, latency)
}

// percentile 需在统计结束后调用
func (s *Stats) percentile(p float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
	idx := int(float64(len(s.latencies)-1) * p)
	return s.latencies[idx]
}

// -------------------- 请求 --------------------

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

var client = &http.Client{Timeout: 8 * time.Second}

func do(method, url, reader string) (*envelope, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}
	if reader != "" {
		req.Header.Set("X-Reader-Id", reader)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return &env, fmt.Errorf("status %d: %s", resp.StatusCode, env.Message)
	}
	return &env, nil
}

func readCount(base string, newsID uint) (int64, error) {
	env, err := do(http.MethodGet, fmt.Sprintf("%s/api/v1/news/%d", base, newsID), "")
	if err != nil {
		return 0, err
	}
	var news struct {
		ReadCount int64 `json:"readCount"`
	}
	if err := json.Unmarshal(env.Data, &news); err != nil {
		return 0, err
	}
	return news.ReadCount, nil
}

// -------------------- 入口 --------------------

// 对一篇已发布文章并发上报阅读，校验阅读数与计入次数一致
func main() {
	base := flag.String("base", "http://localhost:8080", "服务地址")
	newsID := flag.Uint("news", 1, "已发布文章ID")
	concurrency := flag.Int("c", 20, "并发协程数")
	perGoroutine := flag.Int("n", 50, "每协程请求数")
	readers := flag.Int("readers", 100, "不同阅读会话数，用于验证去重")
	flag.Parse()

	fmt.Println("=== 新闻阅读数并发测试 ===")
	fmt.Printf("目标: %s 文章: %d 并发: %d 每协程请求: %d 阅读会话: %d\n",
		*base, *newsID, *concurrency, *perGoroutine, *readers)

	before, err := readCount(*base, uint(*newsID))
	if err != nil {
		fmt.Println("读取文章失败:", err)
		os.Exit(1)
	}

	keys := make([]string, *readers)
	for i := range keys {
		keys[i] = uuid.NewString()
	}

	stats := &Stats{}
	url := fmt.Sprintf("%s/api/v1/news/%d/read", *base, *newsID)
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < *perGoroutine; j++ {
				reader := keys[(id*(*perGoroutine)+j)%len(keys)]
				t0 := time.Now()
				env, err := do(http.MethodPost, url, reader)
				lat := time.Since(t0)
				if err != nil {
					stats.Add(false, false, lat)
					continue
				}
				var res struct {
					Counted bool `json:"counted"`
				}
				_ = json.Unmarshal(env.Data, &res)
				stats.Add(true, res.Counted, lat)
			}
		}(i)
	}
	wg.Wait()
	took := time.Since(start)

	after, err := readCount(*base, uint(*newsID))
	if err != nil {
		fmt.Println("读取文章失败:", err)
		os.Exit(1)
	}

	fmt.Println("\n=== 测试结果 ===")
	fmt.Printf("耗时: %v\n", took)
	fmt.Printf("成功: %d 失败: %d 计入: %d\n", stats.success, stats.failed, stats.counted)
	fmt.Printf("延迟 P50: %v P95: %v P99: %v\n", stats.percentile(0.5), stats.percentile(0.95), stats.percentile(0.99))
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(stats.success)/took.Seconds())
	}
	fmt.Printf("阅读数: %d -> %d (增加 %d)\n", before, after, after-before)

	if after-before != int64(stats.counted) {
		fmt.Println("阅读数与计入次数不一致")
		os.Exit(1)
	}
	fmt.Println("阅读数一致")
}
