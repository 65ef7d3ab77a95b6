package layer2

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/node"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-errors/errors"
)

func DialEthClient(rpcURL, jwtSecretHex string) (*ethclient.Client, error) {
	var opts []rpc.ClientOption

	if jwtSecretHex != "" {
		jwtSecret := common.FromHex(strings.TrimSpace(jwtSecretHex))
		if len(jwtSecret) != 32 {
			return nil, errors.New("jwt secret is not a 32 bytes hex string")
		}
		var jwtKey [32]byte
		copy(jwtKey[:], jwtSecret)
		opts = append(opts, rpc.WithHTTPAuth(node.NewJWTAuth(jwtKey)))
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	// Dial the node with optional JWT authentication
	client, err := rpc.DialOptions(ctx, rpcURL, opts...)
	if err != nil {
		return nil, errors.WrapPrefix(err, "dial "+rpcURL, 0)
	}
	return ethclient.NewClient(client), nil
}
