package console

// Decision 导航守卫的结果：放行，或重定向到另一个路径
type Decision struct {
	redirect string
}

func Allow() Decision { return Decision{} }

func RedirectTo(path string) Decision { return Decision{redirect: path} }

func (d Decision) Allowed() bool { return d.redirect == "" }

// Redirect returns the redirect target, or "" when navigation is allowed.
func (d Decision) Redirect() string { return d.redirect }

// Decide 在每次导航前执行
// - 未登录：只能访问 /login
// - 已登录：禁止再访问 /login
func Decide(authenticated bool, target string) Decision {
	target = Normalize(target)
	if !authenticated && target != LoginPath {
		return RedirectTo(LoginPath)
	}
	if authenticated && target == LoginPath {
		return RedirectTo(HomePath)
	}
	return Allow()
}
