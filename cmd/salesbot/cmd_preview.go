package main

import (
	"fmt"

	"github.com/6529-Collections/salesbot/internal/config"
	"github.com/6529-Collections/salesbot/internal/eth"
	"github.com/6529-Collections/salesbot/internal/publisher"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
)

type previewCmdOptions struct {
	TxHash string
}

func NewPreviewCommand() *cobra.Command {
	opts := &previewCmdOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the announcements of one transaction without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return previewHandler(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.TxHash, "tx", "", "transaction hash, E.g. `0xabc...`")
	_ = cmd.MarkFlagRequired("tx")

	return cmd
}

func previewHandler(cmd *cobra.Command, opts *previewCmdOptions) error {
	if len(common.FromHex(opts.TxHash)) != common.HashLength {
		return errors.Errorf("%q is not a transaction hash", opts.TxHash)
	}
	ctx := cmd.Context()
	cfg := config.Get()
	a, err := newApp(ctx, cfg, publisher.NewLogPublisher())
	if err != nil {
		return err
	}
	defer a.Close()

	receipt, err := a.ethClient.TransactionReceipt(ctx, common.HexToHash(opts.TxHash))
	if err != nil {
		return errors.Wrap(err, "fetching receipt")
	}
	if receipt == nil {
		return errors.Wrap(eth.ErrPendingTransaction, opts.TxHash)
	}

	transfers := collectionTransfers(receipt.Logs, common.HexToAddress(cfg.ContractAddress))
	if len(transfers) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No transfers of the configured collection in this transaction")
		return nil
	}
	for _, lg := range transfers {
		announcement, err := a.pipeline.Prepare(ctx, lg)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "log %d: %v\n", lg.Index, err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), announcement.Text)
		if announcement.ImageURL != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "image: %s (%d bytes)\n", announcement.ImageURL, len(announcement.Image))
		}
	}
	return nil
}

func collectionTransfers(logs []*types.Log, contract common.Address) []types.Log {
	var out []types.Log
	for _, lg := range logs {
		if lg == nil || lg.Address != contract || len(lg.Topics) == 0 || lg.Topics[0] != eth.TransferTopic() {
			continue
		}
		out = append(out, *lg)
	}
	return out
}
