package console

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"relayconsole/internal/model"
	"relayconsole/internal/resource"

	"go.uber.org/zap"
)

// TokenWriter 登录页在拿到 token 后写回 auth store
type TokenWriter interface {
	SetToken(ctx context.Context, token string) error
}

// PasswordPrompt 读取管理员密码
type PasswordPrompt func(label string) (string, error)

// Pages 控制台各页面的处理函数
type Pages struct {
	tokens TokenWriter
	api    *resource.Clients
	out    io.Writer
	prompt PasswordPrompt
	logger *zap.Logger
}

func NewPages(tokens TokenWriter, api *resource.Clients, out io.Writer, prompt PasswordPrompt, logger *zap.Logger) *Pages {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pages{tokens: tokens, api: api, out: out, prompt: prompt, logger: logger}
}

// Register 把所有页面挂到 navigator 上
func (p *Pages) Register(n *Navigator) {
	n.Handle(PageLogin, p.Login)
	n.Handle(PageDashboard, p.Dashboard)
	n.Handle(PageMapping, p.Mapping)
	n.Handle(PageDead, p.DeadLetters)
	n.Handle(PageQQ, p.QQ)
}

// Login 调用登录接口并保存 token；保存是页面的职责，resource 层不做
func (p *Pages) Login(ctx context.Context, args []string) error {
	password, err := p.prompt("Admin password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	resp, err := p.api.Auth.Login(ctx, strings.TrimRight(password, "\r\n"))
	if err != nil {
		return err
	}
	if err := p.tokens.SetToken(ctx, resp.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	p.logger.Info("Logged in")
	fmt.Fprintln(p.out, "Logged in.")
	return nil
}

// Dashboard 展示运维指标
func (p *Pages) Dashboard(ctx context.Context, args []string) error {
	stats, err := p.api.System.Stats(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Queue length\t%d\n", stats.QueueLength)
	fmt.Fprintf(w, "Relayed today\t%d\n", stats.SuccessToday)
	fmt.Fprintf(w, "Failed today\t%d\n", stats.FailedToday)
	fmt.Fprintf(w, "Dead letters\t%d\n", stats.DeadCount)
	return w.Flush()
}

// Mapping list | create | update <id> | delete <id>
func (p *Pages) Mapping(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		return p.listMappings(ctx)
	case "create":
		patch, err := parseMappingFlags("create", rest)
		if err != nil {
			return err
		}
		m, err := p.api.Mappings.Create(ctx, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "Created mapping %d.\n", m.ID)
		return nil
	case "update":
		id, rest, err := leadingID(rest)
		if err != nil {
			return err
		}
		patch, err := parseMappingFlags("update", rest)
		if err != nil {
			return err
		}
		m, err := p.api.Mappings.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		return p.printMappings([]model.Mapping{*m})
	case "delete":
		id, _, err := leadingID(rest)
		if err != nil {
			return err
		}
		if err := p.api.Mappings.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(p.out, "Deleted mapping %d.\n", id)
		return nil
	default:
		return fmt.Errorf("unknown mapping command %q (want list, create, update, delete)", sub)
	}
}

func (p *Pages) listMappings(ctx context.Context) error {
	list, err := p.api.Mappings.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(p.out, "No mappings.")
		return nil
	}
	return p.printMappings(list)
}

func (p *Pages) printMappings(list []model.Mapping) error {
	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTG CHANNEL\tQQ CHANNEL\tGRAY\tENABLED\tREMARK")
	for _, m := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%v\t%s\n", m.ID, m.TGChannel, m.QQChannel, m.GrayRatio, m.Enabled, m.Remark)
	}
	return w.Flush()
}

// parseMappingFlags 只有显式传入的 flag 才会进入 patch
func parseMappingFlags(name string, args []string) (model.MappingPatch, error) {
	fs := flag.NewFlagSet("mapping "+name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	tg := fs.String("tg", "", "Telegram channel id, e.g. -1001234567890")
	qq := fs.String("qq", "", "QQ channel id")
	remark := fs.String("remark", "", "free-form remark")
	gray := fs.Int("gray", 100, "gray ratio, 0-100")
	enabled := fs.Bool("enabled", true, "whether the mapping is active")
	if err := fs.Parse(args); err != nil {
		return model.MappingPatch{}, err
	}

	var patch model.MappingPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tg":
			patch.TGChannel = tg
		case "qq":
			patch.QQChannel = qq
		case "remark":
			patch.Remark = remark
		case "gray":
			patch.GrayRatio = gray
		case "enabled":
			patch.Enabled = enabled
		}
	})
	return patch, nil
}

// DeadLetters list | retry <id>... | retry -all
func (p *Pages) DeadLetters(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		list, err := p.api.DeadLetters.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(p.out, "No dead letters.")
			return nil
		}
		w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tTG CHAT\tTG MSG\tQQ CHANNEL\tERROR\tCONTENT")
		for _, d := range list {
			channel := d.QQChannelID
			if d.ChannelName != "" {
				channel = fmt.Sprintf("%s (%s)", d.ChannelName, d.QQChannelID)
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\t%s\n",
				d.ID, d.CreatedAt, d.TGChatID, d.TGMsgID, channel, oneLine(d.Error, 40), oneLine(d.Content, 60))
		}
		return w.Flush()
	case "retry":
		return p.retryDeadLetters(ctx, rest)
	default:
		return fmt.Errorf("unknown dead command %q (want list, retry)", sub)
	}
}

func (p *Pages) retryDeadLetters(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dead retry", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	all := fs.Bool("all", false, "retry every listed dead letter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var ids []int64
	if *all {
		list, err := p.api.DeadLetters.List(ctx)
		if err != nil {
			return err
		}
		for _, d := range list {
			ids = append(ids, d.ID)
		}
		if len(ids) == 0 {
			fmt.Fprintln(p.out, "No dead letters.")
			return nil
		}
	} else {
		for _, a := range fs.Args() {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid dead letter id %q", a)
			}
			ids = append(ids, id)
		}
	}

	if len(ids) == 1 {
		res, err := p.api.DeadLetters.RetryOne(ctx, ids[0])
		if err != nil {
			return err
		}
		if !res.OK {
			return fmt.Errorf("dead letter %d not requeued: %s", ids[0], res.Reason)
		}
		fmt.Fprintf(p.out, "Requeued dead letter %d.\n", ids[0])
		return nil
	}

	res, err := p.api.DeadLetters.RetryMany(ctx, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Requeued %d of %d dead letters.\n", res.Count, len(ids))
	return nil
}

// QQ guilds | channels <guild_id> | pick <guild_id>
func (p *Pages) QQ(ctx context.Context, args []string) error {
	sub, rest := subcommand(args, "guilds")
	switch sub {
	case "guilds":
		guilds, err := p.api.QQ.Guilds(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "GUILD ID\tNAME")
		for _, g := range guilds {
			fmt.Fprintf(w, "%s\t%s\n", g.ID, g.Name)
		}
		return w.Flush()
	case "channels":
		channels, err := p.api.QQ.Channels(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CHANNEL ID\tNAME\tTYPE\tSPEAK")
		for _, c := range channels {
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\n", c.ID, c.Name, c.Type, c.SpeakPermission == 1)
		}
		return w.Flush()
	case "pick":
		picked, err := p.api.QQ.PickDefaultChannel(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		fmt.Fprintln(p.out, picked.ChannelID)
		return nil
	default:
		return fmt.Errorf("unknown qq command %q (want guilds, channels, pick)", sub)
	}
}

func subcommand(args []string, def string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return def, args
	}
	return args[0], args[1:]
}

func leadingID(args []string) (int64, []string, error) {
	if len(args) == 0 {
		return 0, nil, errors.New("missing mapping id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid mapping id %q", args[0])
	}
	return id, args[1:], nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}
