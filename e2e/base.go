package e2e

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"interaction-lab/auth"
	"interaction-lab/domain"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	key    ed25519.PrivateKey
	http   *http.Client
}

// SetupSuite loads the environment configuration, the suite needs a running server.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerURL == "" {
		s.T().Skip("E2E_SERVER_URL is not set")
	}

	seed, err := hex.DecodeString(s.Config.PrivateKey)
	s.Require().NoError(err, "E2E_PRIVATE_KEY must be hex")
	s.Require().Len(seed, ed25519.SeedSize)
	s.key = ed25519.NewKeyFromSeed(seed)
	s.http = &http.Client{Timeout: 10 * time.Second}
}

func (s *BaseSuite) header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Post signs the interaction like the platform does and returns the decoded answer.
func (s *BaseSuite) Post(name string, in *domain.Interaction) (int, *domain.Response) {
	t := s.T()
	s.header(t, name)

	body, err := json.Marshal(in)
	s.Require().NoError(err)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	return s.post(t, body, auth.Sign(s.key, body, timestamp), timestamp)
}

// PostUnsigned sends the interaction with a signature made for another body.
func (s *BaseSuite) PostUnsigned(name string, in *domain.Interaction) int {
	t := s.T()
	s.header(t, name)

	body, err := json.Marshal(in)
	s.Require().NoError(err)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	code, _ := s.post(t, body, auth.Sign(s.key, []byte("{}"), timestamp), timestamp)
	return code
}

func (s *BaseSuite) post(t *testing.T, body []byte, signature, timestamp string) (int, *domain.Response) {
	req, err := http.NewRequest(http.MethodPost, s.Config.ServerURL, bytes.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature-Ed25519", signature)
	req.Header.Set("X-Signature-Timestamp", timestamp)

	start := time.Now()
	resp, err := s.http.Do(req)
	s.Require().NoError(err, "Failed to reach "+s.Config.ServerURL)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "POST %s [%d] in %v", s.Config.ServerURL, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", body, raw)
	}
	t.Log(logBuilder.String())

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	var out domain.Response
	s.Require().NoError(json.Unmarshal(raw, &out))
	return resp.StatusCode, &out
}

// WithHealth provides a health client within a contextual test step.
func (s *BaseSuite) WithHealth(name string, fn func(ctx context.Context, client healthpb.HealthClient)) {
	if s.Config.HealthAddr == "" {
		s.T().Skip("E2E_HEALTH_ADDR is not set")
	}
	t := s.T()
	s.header(t, name)

	marshaler := protojson.MarshalOptions{UseProtoNames: true, Multiline: true, EmitUnpopulated: true}
	conn, err := grpc.NewClient(s.Config.HealthAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))
			if s.Config.DebugJSON && err == nil {
				fmt.Fprintln(&logBuilder, "\nRESPONSE:")
				fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+s.Config.HealthAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	fn(ctx, healthpb.NewHealthClient(conn))
}
