package main

import (
	"database/sql"
	"fmt"
	"log"

	"news-cms/config"

	_ "github.com/go-sql-driver/mysql"
)

// 子表在前，父表在后
var tables = []string{
	"news_sharing",
	"comment",
	"news",
	"category",
	"subscription",
	"verification_code",
	"user_session",
	"social_login",
	"user_profile",
	"user",
}

func main() {
	cfg := config.LoadConfig()
	if cfg.Database.Driver != "mysql" {
		log.Fatalf("reset_db 仅支持 mysql，当前驱动: %s", cfg.Database.Driver)
	}

	dsn := cfg.Database.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Database,
			cfg.Database.Charset,
		)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("数据库连接测试失败: %v", err)
	}

	fmt.Println("数据库连接成功")
	fmt.Printf("数据库: %s\n", cfg.Database.Database)

	fmt.Printf("\n警告: 该操作将清空以下表的全部数据 %v\n", tables)
	fmt.Print("输入 YES 确认: ")
	var confirm string
	_, _ = fmt.Scanln(&confirm)
	if confirm != "YES" {
		fmt.Println("操作已取消")
		return
	}

	// 关闭外键检查，避免约束冲突
	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer func() { _, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1") }()

	for _, table := range tables {
		fmt.Printf("清空表 %s... ", table)
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE `%s`", table)); err != nil {
			fmt.Printf("失败: %v\n", err)
			continue
		}
		fmt.Println("成功")
	}

	fmt.Println("\n数据库重置完成，表结构保留，自增ID已归零")
}
