// Package main 启动应用程序
package main

import "github.com/atichat/workfolio/pkg/cmd"

//	@title			Workfolio API
//	@version		1.0
//	@description	Workfolio 是一个作品集分享服务，提供用户档案对账、作品发布、标签管理和签名图片访问等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	atichat

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
