package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"github.com/secmon-lab/nudgebot/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

type webhookHandler interface {
	HandleEvent(ctx context.Context, in *model.InboundEvent) *model.WebhookResponse
}

// dispatchInput is the serverless style delivery envelope. Body is either a
// JSON string holding the raw request body or an already parsed object.
type dispatchInput struct {
	Body            json.RawMessage `json:"body"`
	IsBase64Encoded bool            `json:"isBase64Encoded"`
}

func cmdDispatch() *cli.Command {
	var appCfg appConfig
	var inputPath string
	var transport bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "File with the delivery envelope; stdin when empty or \"-\"",
			Destination: &inputPath,
		},
		&cli.BoolFlag{
			Name:        "transport-decoding",
			Usage:       "Undo base64 and form encoding and strip the payload= prefix",
			Sources:     cli.EnvVars("NUDGEBOT_TRANSPORT_DECODING"),
			Destination: &transport,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:  "dispatch",
		Usage: "Handle one Slack webhook delivery read from a file or stdin",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var r io.Reader = os.Stdin
			if inputPath != "" && inputPath != "-" {
				// #nosec G304 - path is provided by CLI argument
				f, err := os.Open(inputPath)
				if err != nil {
					return goerr.Wrap(err, "failed to open input", goerr.V("path", inputPath))
				}
				defer safe.Close(ctx, f)
				r = f
			}

			in, err := readInboundEvent(r, transport)
			if err != nil {
				return err
			}

			a, err := appCfg.build(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			return dispatch(ctx, a.uc.Webhook, in, os.Stdout)
		},
	}
}

func readInboundEvent(r io.Reader, transport bool) (*model.InboundEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input")
	}

	var input dispatchInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, goerr.Wrap(err, "input is not a JSON envelope")
	}

	in := &model.InboundEvent{
		IsBase64Encoded: input.IsBase64Encoded,
		Decoding:        model.DecodeDirect,
	}
	if transport {
		in.Decoding = model.DecodeTransport
	}

	body := bytes.TrimSpace(input.Body)
	switch {
	case len(body) == 0 || bytes.Equal(body, []byte("null")):
		// empty body is rejected by the dispatcher
	case body[0] == '"':
		if err := json.Unmarshal(body, &in.Body); err != nil {
			return nil, goerr.Wrap(err, "invalid body string")
		}
	default:
		in.Structured = json.RawMessage(body)
	}

	return in, nil
}

func dispatch(ctx context.Context, h webhookHandler, in *model.InboundEvent, w io.Writer) error {
	resp := h.HandleEvent(ctx, in)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return goerr.Wrap(err, "failed to write response")
	}
	return nil
}
