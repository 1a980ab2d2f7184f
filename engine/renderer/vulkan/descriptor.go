package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
)

// DEFAULT_MAX_RENAME_COUNT is the number of GPU visible sets per stage before a table stalls.
const DEFAULT_MAX_RENAME_COUNT uint32 = 1024

type descriptorCategory uint8

const (
	categoryCBV descriptorCategory = iota
	categorySRVTexture
	categorySRVTypedBuffer
	categorySRVUntypedBuffer
	categoryUAVTexture
	categoryUAVTypedBuffer
	categoryUAVUntypedBuffer
	categorySampler
	categoryCount
)

var categoryCounts = [categoryCount]uint32{
	categoryCBV:              12,
	categorySRVTexture:       64,
	categorySRVTypedBuffer:   64,
	categorySRVUntypedBuffer: 64,
	categoryUAVTexture:       8,
	categoryUAVTypedBuffer:   8,
	categoryUAVUntypedBuffer: 8,
	categorySampler:          16,
}

var categoryTypes = [categoryCount]vk.DescriptorType{
	categoryCBV:              vk.DescriptorTypeUniformBuffer,
	categorySRVTexture:       vk.DescriptorTypeSampledImage,
	categorySRVTypedBuffer:   vk.DescriptorTypeUniformTexelBuffer,
	categorySRVUntypedBuffer: vk.DescriptorTypeStorageBuffer,
	categoryUAVTexture:       vk.DescriptorTypeStorageImage,
	categoryUAVTypedBuffer:   vk.DescriptorTypeStorageTexelBuffer,
	categoryUAVUntypedBuffer: vk.DescriptorTypeStorageBuffer,
	categorySampler:          vk.DescriptorTypeSampler,
}

var categoryOffsets, descriptorBindingCount = func() ([categoryCount]uint32, uint32) {
	var offsets [categoryCount]uint32
	var total uint32
	for c := range categoryCounts {
		offsets[c] = total
		total += categoryCounts[c]
	}
	return offsets, total
}()

var stageFlags = [metadata.ShaderStageCount]vk.ShaderStageFlagBits{
	metadata.ShaderStageVS: vk.ShaderStageVertexBit,
	metadata.ShaderStageHS: vk.ShaderStageTessellationControlBit,
	metadata.ShaderStageDS: vk.ShaderStageTessellationEvaluationBit,
	metadata.ShaderStageGS: vk.ShaderStageGeometryBit,
	metadata.ShaderStagePS: vk.ShaderStageFragmentBit,
	metadata.ShaderStageCS: vk.ShaderStageComputeBit,
}

// descriptorLayouts are shared by every table: one set layout per stage, plus the
// graphics (VS..PS) and compute pipeline layouts built from them.
type descriptorLayouts struct {
	stages   [metadata.ShaderStageCount]vk.DescriptorSetLayout
	graphics vk.PipelineLayout
	compute  vk.PipelineLayout
}

func createDescriptorLayouts(driver Driver) (*descriptorLayouts, error) {
	l := &descriptorLayouts{}
	for stage := metadata.ShaderStage(0); stage < metadata.ShaderStageCount; stage++ {
		bindings := make([]vk.DescriptorSetLayoutBinding, 0, descriptorBindingCount)
		for c := descriptorCategory(0); c < categoryCount; c++ {
			for slot := uint32(0); slot < categoryCounts[c]; slot++ {
				bindings = append(bindings, vk.DescriptorSetLayoutBinding{
					Binding:         categoryOffsets[c] + slot,
					DescriptorType:  categoryTypes[c],
					DescriptorCount: 1,
					StageFlags:      vk.ShaderStageFlags(stageFlags[stage]),
				})
			}
		}
		layout, err := driver.CreateDescriptorSetLayout(&vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			BindingCount: uint32(len(bindings)),
			PBindings:    bindings,
		})
		if err != nil {
			l.destroy(driver)
			return nil, errors.Wrapf(err, "descriptor set layout for %s", stage)
		}
		l.stages[stage] = layout
	}

	var err error
	if l.graphics, err = driver.CreatePipelineLayout(l.stages[metadata.ShaderStageVS : metadata.ShaderStagePS+1]); err != nil {
		l.destroy(driver)
		return nil, err
	}
	if l.compute, err = driver.CreatePipelineLayout(l.stages[metadata.ShaderStageCS:]); err != nil {
		l.destroy(driver)
		return nil, err
	}
	return l, nil
}

func (l *descriptorLayouts) destroy(driver Driver) {
	if !isNull(l.graphics) {
		driver.DestroyPipelineLayout(l.graphics)
	}
	if !isNull(l.compute) {
		driver.DestroyPipelineLayout(l.compute)
	}
	for _, layout := range l.stages {
		if !isNull(layout) {
			driver.DestroyDescriptorSetLayout(layout)
		}
	}
}

// nullDescriptors fill every slot nothing has been bound to.
type nullDescriptors struct {
	buffer     vk.Buffer
	imageView  vk.ImageView
	bufferView vk.BufferView
	sampler    vk.Sampler
}

type bindingKey struct {
	id   uuid.UUID
	view int
}

type stageTable struct {
	cpu   vk.DescriptorSet
	gpu   []vk.DescriptorSet
	ring  uint32
	dirty bool
	bound *swiss.Map[uint32, bindingKey]
}

/**
 * @brief Per stage binding state of one recording thread in one frame slot. Binds are
 * written to a CPU staging set and copied into the next GPU visible set on Validate.
 */
type DescriptorTable struct {
	updater        DescriptorUpdater
	layouts        *descriptorLayouts
	nulls          nullDescriptors
	pool           vk.DescriptorPool
	maxRenameCount uint32
	stages         [metadata.ShaderStageCount]stageTable

	/** @brief Called when a ring is exhausted. It must leave cmd recording again with no GPU work in flight. */
	onOverflow func(cmd vk.CommandBuffer) error
	stalls     uint64
}

func NewDescriptorTable(driver Driver, layouts *descriptorLayouts, nulls nullDescriptors, maxRenameCount uint32) (*DescriptorTable, error) {
	if maxRenameCount == 0 {
		maxRenameCount = DEFAULT_MAX_RENAME_COUNT
	}
	setCount := (maxRenameCount + 1) * uint32(metadata.ShaderStageCount)

	poolSizes := make([]vk.DescriptorPoolSize, 0, categoryCount)
	for c := descriptorCategory(0); c < categoryCount; c++ {
		poolSizes = append(poolSizes, vk.DescriptorPoolSize{
			Type:            categoryTypes[c],
			DescriptorCount: categoryCounts[c] * setCount,
		})
	}

	pool, err := driver.CreateDescriptorPool(&vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       setCount,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	})
	if err != nil {
		return nil, err
	}

	t := &DescriptorTable{
		updater:        driver,
		layouts:        layouts,
		nulls:          nulls,
		pool:           pool,
		maxRenameCount: maxRenameCount,
	}
	for stage := range t.stages {
		setLayouts := make([]vk.DescriptorSetLayout, maxRenameCount+1)
		for i := range setLayouts {
			setLayouts[i] = layouts.stages[stage]
		}
		sets, err := driver.AllocateDescriptorSets(pool, setLayouts)
		if err != nil {
			driver.DestroyDescriptorPool(pool)
			return nil, err
		}
		t.stages[stage] = stageTable{
			cpu:   sets[0],
			gpu:   sets[1:],
			bound: swiss.NewMap[uint32, bindingKey](uint32(descriptorBindingCount)),
		}
	}
	t.Reset()
	return t, nil
}

func (t *DescriptorTable) Destroy(driver Driver) {
	if !isNull(t.pool) {
		driver.DestroyDescriptorPool(t.pool)
		t.pool = nil
	}
}

// Reset rewinds every ring, forgets what was bound and writes the null defaults.
func (t *DescriptorTable) Reset() {
	for stage := range t.stages {
		st := &t.stages[stage]
		st.ring = 0
		st.dirty = true
		st.bound = swiss.NewMap[uint32, bindingKey](uint32(descriptorBindingCount))
		t.updater.UpdateDescriptorSets(t.nullWrites(st.cpu), nil)
	}
}

func (t *DescriptorTable) nullWrites(set vk.DescriptorSet) []vk.WriteDescriptorSet {
	writes := make([]vk.WriteDescriptorSet, 0, categoryCount)
	for c := descriptorCategory(0); c < categoryCount; c++ {
		count := categoryCounts[c]
		w := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      categoryOffsets[c],
			DescriptorCount: count,
			DescriptorType:  categoryTypes[c],
		}
		switch categoryTypes[c] {
		case vk.DescriptorTypeUniformBuffer, vk.DescriptorTypeStorageBuffer:
			infos := make([]vk.DescriptorBufferInfo, count)
			for i := range infos {
				infos[i] = vk.DescriptorBufferInfo{Buffer: t.nulls.buffer, Range: vk.DeviceSize(vk.WholeSize)}
			}
			w.PBufferInfo = infos
		case vk.DescriptorTypeSampledImage, vk.DescriptorTypeStorageImage:
			infos := make([]vk.DescriptorImageInfo, count)
			for i := range infos {
				infos[i] = vk.DescriptorImageInfo{ImageView: t.nulls.imageView, ImageLayout: vk.ImageLayoutGeneral}
			}
			w.PImageInfo = infos
		case vk.DescriptorTypeUniformTexelBuffer, vk.DescriptorTypeStorageTexelBuffer:
			views := make([]vk.BufferView, count)
			for i := range views {
				views[i] = t.nulls.bufferView
			}
			w.PTexelBufferView = views
		case vk.DescriptorTypeSampler:
			infos := make([]vk.DescriptorImageInfo, count)
			for i := range infos {
				infos[i] = vk.DescriptorImageInfo{Sampler: t.nulls.sampler}
			}
			w.PImageInfo = infos
		}
		writes = append(writes, w)
	}
	return writes
}

func (t *DescriptorTable) bind(stage metadata.ShaderStage, category descriptorCategory, slot uint32, key bindingKey, write vk.WriteDescriptorSet) {
	core.Assert(stage < metadata.ShaderStageCount, "invalid shader stage %d", stage)
	core.Assert(slot < categoryCounts[category], "slot %d out of range for category %d (max %d)", slot, category, categoryCounts[category])

	st := &t.stages[stage]
	binding := categoryOffsets[category] + slot
	if prev, ok := st.bound.Get(binding); ok && prev == key {
		return
	}

	write.SType = vk.StructureTypeWriteDescriptorSet
	write.DstSet = st.cpu
	write.DstBinding = binding
	write.DescriptorCount = 1
	write.DescriptorType = categoryTypes[category]
	t.updater.UpdateDescriptorSets([]vk.WriteDescriptorSet{write}, nil)

	st.bound.Put(binding, key)
	st.dirty = true
}

func (t *DescriptorTable) BindConstantBuffer(stage metadata.ShaderStage, slot uint32, id uuid.UUID, buffer vk.Buffer, offset, size vk.DeviceSize) {
	t.bind(stage, categoryCBV, slot, bindingKey{id: id, view: int(offset)}, vk.WriteDescriptorSet{
		PBufferInfo: []vk.DescriptorBufferInfo{{Buffer: buffer, Offset: offset, Range: size}},
	})
}

func (t *DescriptorTable) BindTexture(stage metadata.ShaderStage, slot uint32, id uuid.UUID, view int, imageView vk.ImageView) {
	t.bind(stage, categorySRVTexture, slot, bindingKey{id: id, view: view}, vk.WriteDescriptorSet{
		PImageInfo: []vk.DescriptorImageInfo{{ImageView: imageView, ImageLayout: vk.ImageLayoutGeneral}},
	})
}

func (t *DescriptorTable) BindTypedBuffer(stage metadata.ShaderStage, slot uint32, id uuid.UUID, bufferView vk.BufferView) {
	t.bind(stage, categorySRVTypedBuffer, slot, bindingKey{id: id}, vk.WriteDescriptorSet{
		PTexelBufferView: []vk.BufferView{bufferView},
	})
}

func (t *DescriptorTable) BindRawBuffer(stage metadata.ShaderStage, slot uint32, id uuid.UUID, buffer vk.Buffer) {
	t.bind(stage, categorySRVUntypedBuffer, slot, bindingKey{id: id}, vk.WriteDescriptorSet{
		PBufferInfo: []vk.DescriptorBufferInfo{{Buffer: buffer, Range: vk.DeviceSize(vk.WholeSize)}},
	})
}

func (t *DescriptorTable) BindStorageImage(stage metadata.ShaderStage, slot uint32, id uuid.UUID, view int, imageView vk.ImageView) {
	t.bind(stage, categoryUAVTexture, slot, bindingKey{id: id, view: view}, vk.WriteDescriptorSet{
		PImageInfo: []vk.DescriptorImageInfo{{ImageView: imageView, ImageLayout: vk.ImageLayoutGeneral}},
	})
}

func (t *DescriptorTable) BindStorageTexelBuffer(stage metadata.ShaderStage, slot uint32, id uuid.UUID, bufferView vk.BufferView) {
	t.bind(stage, categoryUAVTypedBuffer, slot, bindingKey{id: id}, vk.WriteDescriptorSet{
		PTexelBufferView: []vk.BufferView{bufferView},
	})
}

func (t *DescriptorTable) BindStorageBuffer(stage metadata.ShaderStage, slot uint32, id uuid.UUID, buffer vk.Buffer) {
	t.bind(stage, categoryUAVUntypedBuffer, slot, bindingKey{id: id}, vk.WriteDescriptorSet{
		PBufferInfo: []vk.DescriptorBufferInfo{{Buffer: buffer, Range: vk.DeviceSize(vk.WholeSize)}},
	})
}

func (t *DescriptorTable) BindSampler(stage metadata.ShaderStage, slot uint32, id uuid.UUID, sampler vk.Sampler) {
	t.bind(stage, categorySampler, slot, bindingKey{id: id}, vk.WriteDescriptorSet{
		PImageInfo: []vk.DescriptorImageInfo{{Sampler: sampler}},
	})
}

/**
 * @brief Flushes every dirty stage of the graphics (VS..PS) or compute (CS) group: the staging
 * set is copied into the next GPU visible set, which is then bound on cmd. Must be called
 * right before each draw or dispatch.
 */
func (t *DescriptorTable) Validate(cmd vk.CommandBuffer, compute bool) error {
	first, last := metadata.ShaderStageVS, metadata.ShaderStagePS
	if compute {
		first, last = metadata.ShaderStageCS, metadata.ShaderStageCS
	}

	for stage := first; stage <= last; stage++ {
		if st := &t.stages[stage]; st.dirty && st.ring >= t.maxRenameCount {
			if err := t.stall(cmd); err != nil {
				return err
			}
			break
		}
	}

	for stage := first; stage <= last; stage++ {
		st := &t.stages[stage]
		if !st.dirty {
			continue
		}
		dst := st.gpu[st.ring]

		copies := make([]vk.CopyDescriptorSet, 0, categoryCount)
		for c := descriptorCategory(0); c < categoryCount; c++ {
			copies = append(copies, vk.CopyDescriptorSet{
				SType:           vk.StructureTypeCopyDescriptorSet,
				SrcSet:          st.cpu,
				SrcBinding:      categoryOffsets[c],
				DstSet:          dst,
				DstBinding:      categoryOffsets[c],
				DescriptorCount: categoryCounts[c],
			})
		}
		t.updater.UpdateDescriptorSets(nil, copies)

		if compute {
			t.updater.CmdBindDescriptorSets(cmd, vk.PipelineBindPointCompute, t.layouts.compute, 0, []vk.DescriptorSet{dst})
		} else {
			t.updater.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, t.layouts.graphics, uint32(stage), []vk.DescriptorSet{dst})
		}

		st.dirty = false
		st.ring++
	}
	return nil
}

// stall waits out every in-flight use of the GPU sets, then wraps all rings.
func (t *DescriptorTable) stall(cmd vk.CommandBuffer) error {
	if t.onOverflow == nil {
		return errors.Newf("descriptor ring exhausted after %d renames and no flush is installed", t.maxRenameCount)
	}
	core.LogWarn("descriptor ring exhausted after %d renames, stalling for the GPU", t.maxRenameCount)
	if err := t.onOverflow(cmd); err != nil {
		return errors.Wrap(err, "descriptor ring flush")
	}
	t.stalls++
	for stage := range t.stages {
		t.stages[stage].ring = 0
		t.stages[stage].dirty = true
	}
	return nil
}

// Ring reports how many GPU sets of stage have been consumed since the last reset.
func (t *DescriptorTable) Ring(stage metadata.ShaderStage) uint32 {
	return t.stages[stage].ring
}

func (t *DescriptorTable) Stalls() uint64 {
	return t.stalls
}
