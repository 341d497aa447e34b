package conf

// Bootstrap 服务启动配置，由 kratos config 从 yaml 扫描得到
type Bootstrap struct {
	Server *Server
	Data   *Data
	Engine *Engine
}

// Server 服务端配置
type Server struct {
	Http *HTTP
}

// HTTP HTTP 服务配置
type HTTP struct {
	Addr    string
	Timeout string
}

// Data 数据源配置。Storage 为 file 时从快照目录读取，
// 为 postgres 时走数据库。
type Data struct {
	Storage  string
	Output   string
	Database *Database
}

// Database 数据库连接配置
type Database struct {
	Driver string
	Source string
}

// Engine 分析引擎配置文件路径（权重、分词、LLM 等）
type Engine struct {
	Config string
}
