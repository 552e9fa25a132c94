package console

import "strings"

const (
	LoginPath = "/login"
	HomePath  = "/"
)

// 页面名称
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageMapping   = "mapping"
	PageDead      = "dead"
	PageQQ        = "qq"

	LayoutAdmin = "admin"
)

// Route 页面树的一个节点；Children 的 Path 相对于父节点
type Route struct {
	Path     string
	Name     string
	Children []Route
}

// Routes 页面树
// - /login：独立页面（不使用 Layout）
// - 其他后台页面统一挂在 admin layout 下
var Routes = []Route{
	{Path: LoginPath, Name: PageLogin},
	{
		Path: HomePath,
		Name: LayoutAdmin,
		Children: []Route{
			{Path: "", Name: PageDashboard},
			{Path: "mapping", Name: PageMapping},
			{Path: "dead", Name: PageDead},
			{Path: "qq", Name: PageQQ},
		},
	},
}

// Match 路径解析结果
type Match struct {
	Path   string
	Page   string
	Layout string
}

// Resolve 把路径解析为页面，未知路径返回 false
func Resolve(path string) (Match, bool) {
	path = Normalize(path)
	for _, r := range Routes {
		if len(r.Children) == 0 {
			if r.Path == path {
				return Match{Path: path, Page: r.Name}, true
			}
			continue
		}
		for _, child := range r.Children {
			if join(r.Path, child.Path) == path {
				return Match{Path: path, Page: child.Name, Layout: r.Name}, true
			}
		}
	}
	return Match{}, false
}

// Normalize 去掉 query/fragment 与结尾的 /，保证以 / 开头
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(path, "/")
	return path
}

func join(parent, child string) string {
	if child == "" {
		return Normalize(parent)
	}
	return Normalize(strings.TrimRight(parent, "/") + "/" + child)
}
