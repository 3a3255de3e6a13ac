package ratelimit

import (
	"fmt"
	"net/http"

	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// New 按 "次数-周期" 格式（如 "10-M"）创建按IP限流的中间件
// client 非空时计数存放在 Redis，多实例共享；formatted 为空时不限流
func New(formatted, prefix string, client *redis.Client) (gin.HandlerFunc, error) {
	if formatted == "" {
		return func(c *gin.Context) { c.Next() }, nil
	}

	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("限流配置错误 %q: %w", formatted, err)
	}

	options := limiter.StoreOptions{Prefix: "ratelimit:" + prefix, CleanUpInterval: limiter.DefaultCleanUpInterval}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, options)
		if err != nil {
			return nil, fmt.Errorf("创建Redis限流存储失败: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(options)
	}

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			response.Error(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
		}),
	), nil
}
