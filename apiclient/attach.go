package apiclient

import (
	"context"
	"errors"
	"fmt"
	"slices"

	apitypes "github.com/Alia5/macropad/apitypes"
)

// Attachment is a device added by Attach together with its open stream.
type Attachment struct {
	*DeviceStream
	Device apitypes.Device

	client  *Client
	ownsBus bool
}

// Attach adds a device of devType and opens its stream.
//
// busID 0 picks the lowest existing bus, creating bus 1 when there is none.
// A non-zero busID is created when missing. Buses created here are removed
// again by Detach.
func (c *Client) Attach(ctx context.Context, busID uint32, devType string, o *DeviceOptions) (*Attachment, error) {
	list, err := c.BusListCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}
	buses := slices.Clone(list.Buses)
	slices.Sort(buses)

	ownsBus := false
	switch {
	case busID == 0 && len(buses) > 0:
		busID = buses[0]
	case busID == 0:
		busID = 1
		fallthrough
	case !slices.Contains(buses, busID):
		created, err := c.BusCreateCtx(ctx, busID)
		if err != nil {
			return nil, fmt.Errorf("create bus %d: %w", busID, err)
		}
		busID = created.BusID
		ownsBus = true
	}

	a := &Attachment{client: c, ownsBus: ownsBus}
	dev, err := c.DeviceAddCtx(ctx, busID, devType, o)
	if err != nil {
		err = fmt.Errorf("add %s device to bus %d: %w", devType, busID, err)
		return nil, errors.Join(err, a.removeBus(ctx, busID))
	}
	a.Device = *dev

	stream, err := c.OpenStream(ctx, dev.BusID, dev.DevId)
	if err != nil {
		err = fmt.Errorf("open stream %d-%s: %w", dev.BusID, dev.DevId, err)
		return nil, errors.Join(err, a.Detach(ctx))
	}
	a.DeviceStream = stream
	return a, nil
}

// Detach closes the stream and removes the device, and the bus if Attach
// created it.
func (a *Attachment) Detach(ctx context.Context) error {
	var errs []error
	if a.DeviceStream != nil {
		if err := a.DeviceStream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream: %w", err))
		}
	}
	if _, err := a.client.DeviceRemoveCtx(ctx, a.Device.BusID, a.Device.DevId); err != nil {
		errs = append(errs, fmt.Errorf("remove device %d-%s: %w", a.Device.BusID, a.Device.DevId, err))
	}
	errs = append(errs, a.removeBus(ctx, a.Device.BusID))
	return errors.Join(errs...)
}

func (a *Attachment) removeBus(ctx context.Context, busID uint32) error {
	if !a.ownsBus {
		return nil
	}
	if _, err := a.client.BusRemoveCtx(ctx, busID); err != nil {
		return fmt.Errorf("remove bus %d: %w", busID, err)
	}
	return nil
}
